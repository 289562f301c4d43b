package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forever-us/application/ports"
	"forever-us/domain/core/entities"
	"forever-us/domain/core/validators"
	"forever-us/domain/core/valueobjects"
	pkgerrors "forever-us/pkg/errors"

	"go.uber.org/zap"
)

const (
	// StorageKey is the fixed record name the document lives under
	StorageKey = "lover_app_data"

	// SnapshotPrefix starts every export filename
	SnapshotPrefix = "love-journey-backup-"
)

// DocumentAdapter stores the AppDocument as one JSON record in a KeyValueStore
type DocumentAdapter struct {
	store     ports.KeyValueStore
	key       string
	validator *validators.DocumentValidator
	logger    *zap.Logger
}

var _ ports.DocumentRepository = (*DocumentAdapter)(nil)

// NewDocumentAdapter creates an adapter over store using StorageKey
func NewDocumentAdapter(store ports.KeyValueStore, logger *zap.Logger) *DocumentAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentAdapter{
		store:     store,
		key:       StorageKey,
		validator: validators.NewDocumentValidator(),
		logger:    logger,
	}
}

// LoadOrDefault reads the stored document. The default document is returned
// when the record is absent, and also alongside a CorruptStateError or
// PersistenceUnavailableError when it cannot be used.
func (a *DocumentAdapter) LoadOrDefault(ctx context.Context) (entities.AppDocument, error) {
	raw, err := a.store.Get(ctx, a.key)
	if errors.Is(err, ports.ErrKeyNotFound) {
		a.logger.Info("No stored document, using default", zap.String("key", a.key))
		return entities.DefaultDocument(), nil
	}
	if err != nil {
		return entities.DefaultDocument(), unavailable("load", err)
	}

	doc, err := parseStored(a.key, raw, a.validator)
	if err != nil {
		return entities.DefaultDocument(), err
	}

	a.logger.Debug("Loaded stored document",
		zap.String("key", a.key),
		zap.Int("bytes", len(raw)),
		zap.Int("memories", len(doc.Memories)),
	)
	return doc, nil
}

// Save writes doc as compact JSON under the storage key
func (a *DocumentAdapter) Save(ctx context.Context, doc entities.AppDocument) error {
	data, err := encodeDocument(doc, false)
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode document").WithCause(err)
	}
	if err := a.store.Put(ctx, a.key, data); err != nil {
		if errors.Is(err, ports.ErrValueTooLarge) {
			return pkgerrors.NewValidationError("document is too large for the configured store").
				WithCode(pkgerrors.CodeDocumentTooLarge).
				WithCause(err)
		}
		return unavailable("save", err)
	}
	return nil
}

// ExportSnapshot renders doc as indented JSON named after the calendar date of now
func (a *DocumentAdapter) ExportSnapshot(doc entities.AppDocument, now time.Time) (ports.Snapshot, error) {
	data, err := encodeDocument(doc, true)
	if err != nil {
		return ports.Snapshot{}, pkgerrors.NewInternalError("failed to encode snapshot").WithCause(err)
	}
	return ports.Snapshot{
		Filename: SnapshotFilename(now),
		Data:     data,
	}, nil
}

// ImportSnapshot parses a backup. Any JSON object carrying the five document
// fields is accepted; nothing is migrated.
func (a *DocumentAdapter) ImportSnapshot(data []byte) (entities.AppDocument, error) {
	doc, missing, err := decodeDocument(data)
	if err != nil {
		return entities.AppDocument{}, pkgerrors.NewValidationError("import file is not a valid document").
			WithCode(pkgerrors.CodeInvalidFormat).
			WithCause(err)
	}
	if len(missing) > 0 {
		return entities.AppDocument{}, pkgerrors.NewMissingFieldsError(missing)
	}
	return doc, nil
}

// SnapshotFilename returns the export filename for the given instant
func SnapshotFilename(now time.Time) string {
	return fmt.Sprintf("%s%s.json", SnapshotPrefix, valueobjects.CalendarDateOf(now))
}

// unavailable keeps an error that is already classified, such as an open breaker
func unavailable(operation string, err error) error {
	if pkgerrors.IsPersistenceUnavailable(err) {
		return err
	}
	return pkgerrors.NewPersistenceUnavailableError(operation, err)
}
