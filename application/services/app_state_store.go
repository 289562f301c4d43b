package services

import (
	"context"
	"sync"
	"time"

	"forever-us/application/ports"
	"forever-us/domain/core/aggregates"
	"forever-us/domain/core/entities"
	"forever-us/domain/core/validators"
	pkgerrors "forever-us/pkg/errors"
	"forever-us/pkg/utils"

	"go.uber.org/zap"
)

const (
	// NoticeCorruptState is shown when the stored record could not be read
	NoticeCorruptState = "Saved data could not be read, so the default page was restored."

	// NoticeStorageUnavailable is shown when the store could not be reached on load
	NoticeStorageUnavailable = "Storage is unavailable right now; changes are kept in memory only."
)

// AppStateStore owns the single live AppDocument. Every mutation goes through
// a validated commit that swaps the document and then persists it, in that
// order and under one lock, so saves land in commit order.
type AppStateStore struct {
	repo      ports.DocumentRepository
	validator *validators.DocumentValidator
	metrics   ports.StateMetrics
	clock     utils.Clock
	logger    *zap.Logger

	mu             sync.Mutex
	loaded         bool
	doc            entities.AppDocument
	notice         string
	lastPersistErr error
	storeOpts      []aggregates.MemoryStoreOption
}

// NewAppStateStore creates the store. Nothing is read until the first call
// that needs the document.
func NewAppStateStore(
	repo ports.DocumentRepository,
	metrics ports.StateMetrics,
	clock utils.Clock,
	logger *zap.Logger,
) *AppStateStore {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppStateStore{
		repo:      repo,
		validator: validators.NewDocumentValidator(),
		metrics:   metrics,
		clock:     clock,
		logger:    logger,
	}
}

// Load returns a copy of the current document
func (s *AppStateStore) Load(ctx context.Context) (entities.AppDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return entities.AppDocument{}, err
	}
	return s.doc.Clone(), nil
}

// Replace validates next and commits it. A failed save is logged and kept
// for LastPersistError; the in-memory commit stands either way.
func (s *AppStateStore) Replace(ctx context.Context, next entities.AppDocument) error {
	next = next.Normalize()
	if err := s.validator.Validate(next); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.commitLocked(ctx, next)
	return nil
}

// AddMemory validates the candidate, appends it to the journal and commits
func (s *AppStateStore) AddMemory(ctx context.Context, candidate entities.MemoryCandidate) (entities.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return entities.Memory{}, err
	}

	store := aggregates.NewMemoryStore(s.doc.Memories, s.storeOpts...)
	memory, err := store.Add(candidate)
	if err != nil {
		return entities.Memory{}, err
	}

	next := s.doc.WithMemories(store.Entries())
	if err := s.validator.Validate(next); err != nil {
		return entities.Memory{}, err
	}

	s.commitLocked(ctx, next)
	s.metrics.RecordMemoryAdded()

	s.logger.Debug("Memory added",
		zap.String("memoryID", memory.ID.String()),
		zap.String("date", memory.Date.String()),
	)
	return memory, nil
}

// DeleteMemory removes the memory with the given id. An unknown id leaves
// the document untouched and is not an error.
func (s *AppStateStore) DeleteMemory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	store := aggregates.NewMemoryStore(s.doc.Memories, s.storeOpts...)
	if !store.Delete(id) {
		s.logger.Debug("Delete ignored for unknown memory", zap.String("memoryID", id))
		return nil
	}

	s.commitLocked(ctx, s.doc.WithMemories(store.Entries()))
	s.metrics.RecordMemoryDeleted()
	return nil
}

// ListMemories returns one page of the journal, newest first
func (s *AppStateStore) ListMemories(ctx context.Context, page, size int) (aggregates.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return aggregates.Page{}, err
	}
	return aggregates.NewMemoryStore(s.doc.Memories).ListPage(page, size)
}

// DaysElapsed returns the whole days between the start date and now, rounded up.
// It is computed on every call.
func (s *AppStateStore) DaysElapsed(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return s.doc.DaysElapsed(now), nil
}

// Export serializes the current document into a dated backup
func (s *AppStateStore) Export(ctx context.Context) (ports.Snapshot, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return ports.Snapshot{}, err
	}
	return s.repo.ExportSnapshot(doc, s.clock.Now())
}

// Import parses a backup and commits it as the new document
func (s *AppStateStore) Import(ctx context.Context, data []byte) (entities.AppDocument, error) {
	doc, err := s.repo.ImportSnapshot(data)
	if err != nil {
		return entities.AppDocument{}, err
	}
	if err := s.Replace(ctx, doc); err != nil {
		return entities.AppDocument{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = ""
	return s.doc.Clone(), nil
}

// Notice returns the message explaining a fallback on load, if any
func (s *AppStateStore) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// DismissNotice clears the load notice
func (s *AppStateStore) DismissNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = ""
}

// LastPersistError returns the error of the most recent save, or nil if it succeeded
func (s *AppStateStore) LastPersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPersistErr
}

// Now exposes the store's clock to callers computing day counts
func (s *AppStateStore) Now() time.Time {
	return s.clock.Now()
}

func (s *AppStateStore) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	doc, err := s.repo.LoadOrDefault(ctx)
	switch {
	case err == nil:
	case pkgerrors.IsCorruptState(err):
		s.logger.Warn("Stored document is corrupt, falling back to default", zap.Error(err))
		s.notice = NoticeCorruptState
	case pkgerrors.IsPersistenceUnavailable(err):
		s.logger.Warn("Storage unavailable on load, falling back to default", zap.Error(err))
		s.notice = NoticeStorageUnavailable
		s.lastPersistErr = err
	default:
		return err
	}

	s.doc = doc.Normalize()
	s.loaded = true
	return nil
}

func (s *AppStateStore) commitLocked(ctx context.Context, next entities.AppDocument) {
	s.doc = next.Clone()
	s.loaded = true

	start := time.Now()
	err := s.repo.Save(ctx, s.doc)
	s.metrics.RecordDocumentSave(err == nil, time.Since(start))

	if err != nil {
		s.logger.Error("Failed to persist document; keeping in-memory state",
			zap.Error(err),
			zap.Int("memories", len(s.doc.Memories)),
		)
		s.lastPersistErr = err
		return
	}
	s.lastPersistErr = nil
}
