package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"forever-us/application/services"
	"forever-us/pkg/common"
	pkgerrors "forever-us/pkg/errors"

	"go.uber.org/zap"
)

// maxSnapshotBytes bounds an imported backup file
const maxSnapshotBytes = 64 << 20

// SnapshotHandler serves backup export and import
type SnapshotHandler struct {
	store  *services.AppStateStore
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(store *services.AppStateStore, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		store:  store,
		errors: errHandler,
		logger: logger,
	}
}

// Export handles GET /export
func (h *SnapshotHandler) Export(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.store.Export(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondAttachment(w, snapshot.Filename, "application/json", snapshot.Data)
}

// Import handles POST /import. The backup may be the raw JSON body or a
// multipart upload in the "file" field.
func (h *SnapshotHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSnapshotBytes)

	data, err := readUpload(r, "file")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	doc, err := h.store.Import(r.Context(), data)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("Snapshot imported", zap.Int("memories", len(doc.Memories)))
	common.RespondWithMeta(w, http.StatusOK, doc, common.NewMeta(r))
}

// readUpload returns the bytes of a multipart field, or the whole body for
// any other content type. r.Body must already be size limited.
func readUpload(r *http.Request, field string) ([]byte, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, bodyError(err)
		}
		return data, nil
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, pkgerrors.NewMissingFieldsError([]string{field})
		}
		return nil, bodyError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, bodyError(err)
	}
	return data, nil
}
