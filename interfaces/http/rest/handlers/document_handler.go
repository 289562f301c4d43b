package handlers

import (
	"net/http"
	"time"

	"forever-us/application/services"
	"forever-us/domain/core/entities"
	"forever-us/pkg/common"
	pkgerrors "forever-us/pkg/errors"
	"forever-us/pkg/utils"

	"go.uber.org/zap"
)

// DocumentHandler serves the whole page document and the day counter
type DocumentHandler struct {
	store  *services.AppStateStore
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(store *services.AppStateStore, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		store:  store,
		errors: errHandler,
		logger: logger,
	}
}

// DocumentResponse is what the page needs to render
type DocumentResponse struct {
	Document     entities.AppDocument `json:"document"`
	DaysElapsed  int                  `json:"daysElapsed"`
	EditMode     bool                 `json:"editMode"`
	Notice       string               `json:"notice,omitempty"`
	PersistError string               `json:"persistError,omitempty"`
}

// DaysResponse is the body of GET /days
type DaysResponse struct {
	StartDate   string `json:"startDate"`
	DaysElapsed int    `json:"daysElapsed"`
	AsOf        string `json:"asOf"`
}

// GetDocument handles GET /document
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	h.respondDocument(w, r, http.StatusOK)
}

// ReplaceDocument handles PUT /document
func (h *DocumentHandler) ReplaceDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := common.ParseJSONBody(w, r, &req, maxDocumentBytes); err != nil {
		h.errors.Handle(w, r, bodyError(err))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	doc, err := req.ToEntity()
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := h.store.Replace(r.Context(), doc); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("Document replaced",
		zap.Int("memories", len(doc.Memories)),
		zap.String("startDate", doc.StartDate.String()),
	)
	h.respondDocument(w, r, http.StatusOK)
}

// GetDays handles GET /days
func (h *DocumentHandler) GetDays(w http.ResponseWriter, r *http.Request) {
	now := h.store.Now()
	days, err := h.store.DaysElapsed(r.Context(), now)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	doc, err := h.store.Load(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, DaysResponse{
		StartDate:   doc.StartDate.String(),
		DaysElapsed: days,
		AsOf:        now.UTC().Format(time.RFC3339),
	})
}

// DismissNotice handles DELETE /notice
func (h *DocumentHandler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	h.store.DismissNotice()
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) respondDocument(w http.ResponseWriter, r *http.Request, status int) {
	ctx := r.Context()
	doc, err := h.store.Load(ctx)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	days, err := h.store.DaysElapsed(ctx, h.store.Now())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	resp := DocumentResponse{
		Document:    doc,
		DaysElapsed: days,
		EditMode:    common.IsEditMode(ctx),
		Notice:      h.store.Notice(),
	}
	if persistErr := h.store.LastPersistError(); persistErr != nil {
		resp.PersistError = "Changes are saved in memory but could not be written to storage."
	}

	common.RespondWithMeta(w, status, resp, common.NewMeta(r))
}
