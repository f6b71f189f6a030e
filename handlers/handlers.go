package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sndpng/spng/internal/codec"
	"github.com/sndpng/spng/models"
	"github.com/sndpng/spng/service"
)

// Handlers struct holds service dependencies
type Handlers struct {
	codecService  service.CodecService
	pluginService service.PluginService
}

// NewHandlers creates a new handlers instance with service dependencies
func NewHandlers(codecService service.CodecService, pluginService service.PluginService) *Handlers {
	return &Handlers{
		codecService:  codecService,
		pluginService: pluginService,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HealthHandler handles the health check endpoint
//
//	@Summary		Health Check
//	@Description	Returns the health status of the API service
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"Service is healthy"
//	@Router			/health [get]
func (h *Handlers) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: "1.0.0"})
}

func requestID(c *gin.Context) string {
	id := c.GetHeader("X-Trace-Id")
	if id == "" {
		id = fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return id
}

func containerKind(c *gin.Context) models.ContainerKind {
	kind := c.PostForm("container_kind")
	if kind == "" {
		kind = "png"
	}
	return models.ContainerKind(kind)
}

// CalculateCapacityHandler handles the capacity calculation request
//
//	@Summary		Calculate Embedding Capacity
//	@Description	Reports how many compressed-and-encrypted payload bytes a cover file (PNG or WAV) can carry before the writer would need to auto-expand it.
//	@Tags			Steganography
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			cover			formData	file	true	"Cover file (PNG or WAV) to calculate capacity for."
//	@Param			container_kind	formData	string	false	"Carrier kind: png or wav. Defaults to png."
//	@Success		200				{object}	models.CapacityResult	"Successfully calculated embedding capacity."
//	@Failure		400				{object}	models.ErrorResponse	"Bad Request: no file uploaded or unsupported container kind."
//	@Failure		500				{object}	models.ErrorResponse	"Internal Server Error: failed to process the file."
//	@Router			/capacity [post]
func (h *Handlers) CalculateCapacityHandler(c *gin.Context) {
	reqID := requestID(c)
	log.Printf("[INFO] [%s] CalculateCapacityHandler: request from %s", reqID, c.ClientIP())

	fileHeader, err := c.FormFile("cover")
	if err != nil {
		sendError(c, http.StatusBadRequest, "MISSING_FILE", "Cover file not provided")
		return
	}
	coverData, err := readFormFile(fileHeader)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Failed to read cover file content")
		return
	}

	capacity, err := h.codecService.Capacity(coverData, containerKind(c))
	if err != nil {
		reportCodecError(c, err)
		return
	}

	c.JSON(http.StatusOK, capacity)
}

// EmbedHandler hides a secret file inside a cover file, producing a new
// carrier file whose low bits encode the framed, optionally encrypted,
// deflate-compressed payload.
//
//	@Summary		Embed secret file into a cover file
//	@Description	Hides a secret file inside a PNG or WAV cover, optionally XOR-encrypted with a key file on top of the deterministic ChaCha8 keystream.
//	@Tags			Steganography
//	@Accept			multipart/form-data
//	@Produce		application/octet-stream
//	@Param			cover			formData	file	true	"Cover file (PNG or WAV)"
//	@Param			secret			formData	file	true	"Secret file to embed"
//	@Param			container_kind	formData	string	false	"Carrier kind: png or wav. Defaults to png."
//	@Param			encrypt			formData	bool	false	"Enable XOR encryption"
//	@Param			key				formData	file	false	"Key file layered on top of the algorithmic keystream; providing one implies encrypt=true"
//	@Success		200	{file}	binary	"Stego carrier file with embedded secret"
//	@Failure		400	{object}	models.ErrorResponse	"Invalid input"
//	@Failure		500	{object}	models.ErrorResponse	"Processing error"
//	@Router			/embed [post]
func (h *Handlers) EmbedHandler(c *gin.Context) {
	reqID := requestID(c)
	start := time.Now()

	coverHeader, err := c.FormFile("cover")
	if err != nil {
		sendError(c, http.StatusBadRequest, "MISSING_FILES", "Cover file not provided")
		return
	}
	coverData, err := readFormFile(coverHeader)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Failed to read cover file")
		return
	}

	secretHeader, err := c.FormFile("secret")
	if err != nil {
		sendError(c, http.StatusBadRequest, "MISSING_FILES", "Secret file not provided")
		return
	}
	secretData, err := readFormFile(secretHeader)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Failed to read secret file")
		return
	}

	var keyData []byte
	if keyHeader, err := c.FormFile("key"); err == nil {
		keyData, err = readFormFile(keyHeader)
		if err != nil {
			sendError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Failed to read key file")
			return
		}
	}

	encrypt := c.PostForm("encrypt") == "true" || len(keyData) > 0

	req := &models.EncodeRequest{
		CoverData:       coverData,
		PayloadData:     secretData,
		PayloadFilename: secretHeader.Filename,
		ContainerKind:   containerKind(c),
		Encrypt:         encrypt,
		KeyData:         keyData,
	}

	resp, err := h.codecService.Encode(req)
	if err != nil {
		log.Printf("[ERROR] [%s] EmbedHandler: %v", reqID, err)
		reportCodecError(c, err)
		return
	}

	processingTime := int(time.Since(start).Milliseconds())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resp.Filename))
	c.Header("X-Secret-Size", strconv.Itoa(len(secretData)))
	c.Header("X-Processing-Time", strconv.Itoa(processingTime))
	c.Data(http.StatusOK, "application/octet-stream", resp.CarrierData)
}

// ExtractHandler recovers the payload hidden inside a carrier produced
// by EmbedHandler.
//
//	@Summary		Extract secret file from a carrier file
//	@Description	Extracts, decrypts and decompresses the payload hidden in a PNG or WAV carrier, restoring its original filename extension.
//	@Tags			Steganography
//	@Accept			multipart/form-data
//	@Produce		application/octet-stream
//	@Param			carrier			formData	file	true	"Carrier file (PNG or WAV) with embedded data"
//	@Param			container_kind	formData	string	false	"Carrier kind: png or wav. Defaults to png."
//	@Param			key				formData	file	false	"Key file matching the one used at embed time"
//	@Success		200	{file}	binary	"Extracted secret file"
//	@Failure		400	{object}	models.ErrorResponse	"Invalid input"
//	@Failure		500	{object}	models.ErrorResponse	"Extraction error"
//	@Router			/extract [post]
func (h *Handlers) ExtractHandler(c *gin.Context) {
	reqID := requestID(c)
	start := time.Now()

	carrierHeader, err := c.FormFile("carrier")
	if err != nil {
		sendError(c, http.StatusBadRequest, "MISSING_FILE", "Carrier file not provided")
		return
	}
	carrierData, err := readFormFile(carrierHeader)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Failed to read carrier file")
		return
	}

	var keyData []byte
	if keyHeader, err := c.FormFile("key"); err == nil {
		keyData, err = readFormFile(keyHeader)
		if err != nil {
			sendError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Failed to read key file")
			return
		}
	}

	resp, err := h.codecService.Decode(&models.DecodeRequest{
		CarrierData:   carrierData,
		ContainerKind: containerKind(c),
		KeyData:       keyData,
	})
	if err != nil {
		log.Printf("[ERROR] [%s] ExtractHandler: %v", reqID, err)
		reportCodecError(c, err)
		return
	}

	processingTime := int(time.Since(start).Milliseconds())
	outputFilename := "extracted"
	if resp.Extension != "" {
		outputFilename += "." + resp.Extension
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outputFilename))
	c.Header("X-Secret-Size", strconv.Itoa(len(resp.PayloadData)))
	c.Header("X-Processing-Time", strconv.Itoa(processingTime))
	c.Data(http.StatusOK, "application/octet-stream", resp.PayloadData)
}

// AnalyzeHandler reports whether a carrier's header has the encrypted
// flag set, without decoding the body.
//
//	@Summary		Analyze a carrier's header
//	@Description	Reads only the first 128 bytes of a carrier and reports whether its payload is encrypted.
//	@Tags			Steganography
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			carrier			formData	file	true	"Carrier file (PNG or WAV)"
//	@Param			container_kind	formData	string	false	"Carrier kind: png or wav. Defaults to png."
//	@Success		200	{object}	models.AnalyzeResponse
//	@Failure		400	{object}	models.ErrorResponse
//	@Router			/analyze [post]
func (h *Handlers) AnalyzeHandler(c *gin.Context) {
	carrierHeader, err := c.FormFile("carrier")
	if err != nil {
		sendError(c, http.StatusBadRequest, "MISSING_FILE", "Carrier file not provided")
		return
	}
	carrierData, err := readFormFile(carrierHeader)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "PROCESSING_ERROR", "Failed to read carrier file")
		return
	}

	resp, err := h.codecService.Analyze(carrierData, containerKind(c))
	if err != nil {
		reportCodecError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListPluginsHandler lists every loaded carrier plugin and its enabled
// state.
//
//	@Summary		List carrier plugins
//	@Description	Lists every plugin discovered in the Plugins directory and whether it is enabled.
//	@Tags			Plugins
//	@Produce		json
//	@Success		200	{array}	models.PluginInfo
//	@Router			/plugins [get]
func (h *Handlers) ListPluginsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.pluginService.List())
}

// TogglePluginHandler enables or disables a loaded plugin by name.
//
//	@Summary		Toggle a carrier plugin
//	@Description	Enables or disables a loaded plugin so it participates in (or is excluded from) encode/decode dispatch.
//	@Tags			Plugins
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			name	path	string	true	"Plugin name"
//	@Param			enabled	formData	bool	true	"Desired enabled state"
//	@Success		204
//	@Failure		400	{object}	models.ErrorResponse
//	@Router			/plugins/{name} [post]
func (h *Handlers) TogglePluginHandler(c *gin.Context) {
	name := c.Param("name")
	enabled := c.PostForm("enabled") == "true"
	h.pluginService.SetEnabled(name, enabled)
	c.Status(http.StatusNoContent)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// reportCodecError translates a *codec.Error (or the
// models.ErrUnsupportedContainer sentinel) into the HTTP status and
// structured body its Kind warrants.
func reportCodecError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "PROCESSING_ERROR"

	switch {
	case codec.IsKind(err, codec.KindUnsupportedContainer), errors.Is(err, models.ErrUnsupportedContainer):
		status, code = http.StatusBadRequest, "UNSUPPORTED_CONTAINER"
	case codec.IsKind(err, codec.KindMalformedHeader):
		status, code = http.StatusBadRequest, "MALFORMED_HEADER"
	case codec.IsKind(err, codec.KindPayloadTruncated):
		status, code = http.StatusBadRequest, "PAYLOAD_TRUNCATED"
	case codec.IsKind(err, codec.KindCompressionError):
		status, code = http.StatusBadRequest, "COMPRESSION_ERROR"
	case codec.IsKind(err, codec.KindIntegrityError):
		status, code = http.StatusBadRequest, "INTEGRITY_ERROR"
	case codec.IsKind(err, codec.KindResizeRequiredButRefused):
		status, code = http.StatusBadRequest, "RESIZE_REQUIRED"
	case codec.IsKind(err, codec.KindPluginLoadError), codec.IsKind(err, codec.KindPluginOperationError):
		status, code = http.StatusBadGateway, "PLUGIN_ERROR"
	}

	sendError(c, status, code, err.Error())
}

// sendError sends a standardized error response
func sendError(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, models.ErrorResponse{
		Success: false,
		Error: models.ErrorDetail{
			Message: message,
			Details: map[string]interface{}{"code": code},
		},
	})
}
