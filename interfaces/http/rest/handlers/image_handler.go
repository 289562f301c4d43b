package handlers

import (
	"net/http"

	"forever-us/application/ports"
	"forever-us/infrastructure/config"
	"forever-us/pkg/common"
	pkgerrors "forever-us/pkg/errors"

	"go.uber.org/zap"
)

// ImageRecorder counts processed uploads
type ImageRecorder interface {
	RecordImageProcessed(success bool)
}

// ImageHandler turns uploaded pictures into inline data URIs
type ImageHandler struct {
	codec    ports.ImageCodec
	settings *config.RuntimeSettings
	metrics  ImageRecorder
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewImageHandler creates a new image handler
func NewImageHandler(
	codec ports.ImageCodec,
	settings *config.RuntimeSettings,
	metrics ImageRecorder,
	errHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ImageHandler {
	return &ImageHandler{
		codec:    codec,
		settings: settings,
		metrics:  metrics,
		errors:   errHandler,
		logger:   logger,
	}
}

// ImageResponse carries the processed picture
type ImageResponse struct {
	DataURI string `json:"dataUri"`
}

// Upload handles POST /images
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	imgCfg := h.settings.Image()
	r.Body = http.MaxBytesReader(w, r.Body, imgCfg.MaxUploadBytes)

	data, err := readUpload(r, "file")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if len(data) == 0 {
		h.errors.Handle(w, r, pkgerrors.NewMissingFieldsError([]string{"file"}))
		return
	}

	uri, err := h.codec.Downscale(r.Context(), data, imgCfg.MaxWidth, imgCfg.Quality)
	h.metrics.RecordImageProcessed(err == nil)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Debug("Image processed",
		zap.Int("inputBytes", len(data)),
		zap.Int("outputBytes", len(uri)),
	)
	common.RespondJSON(w, http.StatusOK, ImageResponse{DataURI: uri})
}
