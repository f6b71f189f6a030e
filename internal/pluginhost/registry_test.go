package pluginhost

import (
	"io"
	"testing"

	"github.com/sndpng/spng/pluginapi"
)

type stubDecoder struct{ exts []string }

func (stubDecoder) Metadata() pluginapi.Metadata    { return pluginapi.Metadata{Name: "stub"} }
func (s stubDecoder) SupportedExtensions() []string { return s.exts }
func (stubDecoder) Decode(string, pluginapi.ProgressFunc) (io.ReadCloser, error) {
	return nil, nil
}

type stubEncoder struct{ exts []string }

func (stubEncoder) Metadata() pluginapi.Metadata    { return pluginapi.Metadata{Name: "stub"} }
func (s stubEncoder) SupportedExtensions() []string { return s.exts }
func (stubEncoder) Encode(string, string, pluginapi.ByteSource, pluginapi.ProgressFunc) error {
	return nil
}

func TestSetEnabledIsNoOpForUnknownPlugin(t *testing.T) {
	r := NewRegistry()
	r.SetEnabled("nonexistent", true)
	if len(r.EnabledMetadata()) != 0 {
		t.Fatalf("expected no enabled plugins")
	}
}

func TestEncoderHiddenWhenDisabled(t *testing.T) {
	r := NewRegistry()
	r.plugins["seq"] = &loaded{
		meta:    pluginapi.Metadata{Name: "seq"},
		enabled: false,
	}
	if _, ok := r.Encoder("seq"); ok {
		t.Fatal("expected disabled plugin's encoder to be hidden")
	}
	r.SetEnabled("seq", true)
	if _, ok := r.Encoder("seq"); ok {
		t.Fatal("expected nil encoder to stay hidden even when enabled")
	}
}

func TestAllMetadataReflectsEnabledState(t *testing.T) {
	r := NewRegistry()
	r.plugins["a"] = &loaded{meta: pluginapi.Metadata{Name: "a"}, enabled: false}
	r.plugins["b"] = &loaded{meta: pluginapi.Metadata{Name: "b"}, enabled: true}

	all := r.AllMetadata()
	if all["a"] != false || all["b"] != true {
		t.Fatalf("AllMetadata() = %v, want a=false b=true", all)
	}
	enabled := r.EnabledMetadata()
	if len(enabled) != 1 || enabled[0].Name != "b" {
		t.Fatalf("EnabledMetadata() = %v, want only b", enabled)
	}
}

func TestEncoderFindsEnabledMatchByTagEvenWhenNameDiffers(t *testing.T) {
	r := NewRegistry()
	r.plugins["registeredName"] = &loaded{
		meta:    pluginapi.Metadata{Name: "registeredName"},
		encoder: stubEncoder{exts: []string{"snseq"}},
		enabled: true,
	}
	if _, ok := r.Encoder("unknown"); ok {
		t.Fatal("expected no match for unregistered tag")
	}
	enc, ok := r.Encoder("snseq")
	if !ok || enc == nil {
		t.Fatal("expected a matching encoder looked up by container tag, not plugin name")
	}
	r.SetEnabled("registeredName", false)
	if _, ok := r.Encoder("snseq"); ok {
		t.Fatal("expected disabled plugin to be excluded")
	}
}

func TestDecoderByExtensionFindsEnabledMatch(t *testing.T) {
	r := NewRegistry()
	r.plugins["seq"] = &loaded{
		meta:    pluginapi.Metadata{Name: "seq"},
		decoder: stubDecoder{exts: []string{"snseq"}},
		enabled: true,
	}
	if _, ok := r.DecoderByExtension("unknown"); ok {
		t.Fatal("expected no match for unregistered extension")
	}
	dec, ok := r.DecoderByExtension("snseq")
	if !ok || dec == nil {
		t.Fatal("expected a matching decoder")
	}
	r.SetEnabled("seq", false)
	if _, ok := r.DecoderByExtension("snseq"); ok {
		t.Fatal("expected disabled plugin to be excluded")
	}
}
