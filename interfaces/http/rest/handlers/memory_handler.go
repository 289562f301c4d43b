package handlers

import (
	"net/http"
	"time"

	"forever-us/application/services"
	"forever-us/domain/core/aggregates"
	"forever-us/domain/core/entities"
	"forever-us/infrastructure/config"
	"forever-us/pkg/common"
	pkgerrors "forever-us/pkg/errors"
	"forever-us/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxMemoryBytes = 1 << 20

// MemoryResponse is a memory plus the time its id was generated, when the
// id carries one
type MemoryResponse struct {
	entities.Memory
	AddedAt string `json:"addedAt,omitempty"`
}

// MemoryPageResponse is one page of memories
type MemoryPageResponse struct {
	Items       []MemoryResponse `json:"items"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	TotalItems  int              `json:"totalItems"`
	PageSize    int              `json:"pageSize"`
}

func newMemoryResponse(m entities.Memory) MemoryResponse {
	resp := MemoryResponse{Memory: m}
	if at, ok := m.ID.CreatedAt(); ok {
		resp.AddedAt = at.Format(time.RFC3339)
	}
	return resp
}

func newMemoryPageResponse(page aggregates.Page) MemoryPageResponse {
	items := make([]MemoryResponse, len(page.Items))
	for i, m := range page.Items {
		items[i] = newMemoryResponse(m)
	}
	return MemoryPageResponse{
		Items:       items,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		TotalItems:  page.TotalItems,
		PageSize:    page.PageSize,
	}
}

// MemoryHandler handles memory journal HTTP requests
type MemoryHandler struct {
	store    *services.AppStateStore
	settings *config.RuntimeSettings
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(
	store *services.AppStateStore,
	settings *config.RuntimeSettings,
	errHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *MemoryHandler {
	return &MemoryHandler{
		store:    store,
		settings: settings,
		errors:   errHandler,
		logger:   logger,
	}
}

// ListMemories handles GET /memories
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	params := common.ExtractPaginationParams(r, h.settings.PageSize())

	page, err := h.store.ListMemories(r.Context(), params.Page, params.PageSize)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	meta := common.NewMeta(r)
	meta.Pagination = common.BuildPaginationMeta(page.CurrentPage, page.PageSize, page.TotalItems, page.TotalPages)
	meta.Notice = h.store.Notice()
	common.RespondWithMeta(w, http.StatusOK, newMemoryPageResponse(page), meta)
}

// CreateMemory handles POST /memories
func (h *MemoryHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	var req CreateMemoryRequest
	if err := common.ParseJSONBody(w, r, &req, maxMemoryBytes); err != nil {
		h.errors.Handle(w, r, bodyError(err))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	memory, err := h.store.AddMemory(r.Context(), req.ToCandidate())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("Memory added",
		zap.String("memoryID", memory.ID.String()),
		zap.String("date", memory.Date.String()),
	)
	common.RespondWithMeta(w, http.StatusCreated, newMemoryResponse(memory), common.NewMeta(r))
}

// DeleteMemory handles DELETE /memories/{memoryID}. Unknown ids succeed.
func (h *MemoryHandler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryID")
	if memoryID == "" {
		h.errors.Handle(w, r, pkgerrors.NewMissingFieldsError([]string{"memoryID"}))
		return
	}

	if err := h.store.DeleteMemory(r.Context(), memoryID); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
