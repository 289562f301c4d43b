package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"forever-us/application/ports"
	"forever-us/domain/core/entities"
	"forever-us/domain/core/valueobjects"
	"forever-us/infrastructure/persistence/memory"
	pkgerrors "forever-us/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore rejects every call with err
type failingStore struct {
	err   error
	calls int
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Put(ctx context.Context, key string, value []byte) error {
	f.calls++
	return f.err
}

func (f *failingStore) Close() error { return nil }

func sampleDocument() entities.AppDocument {
	doc := entities.DefaultDocument()
	doc.Person1.Name = "Minh"
	doc.StartDate = valueobjects.MustCalendarDate("2021-09-12")
	music := "https://example.com/our-song.mp3"
	doc.Theme.MusicURL = &music
	doc.Memories = append(doc.Memories, entities.Memory{
		ID:          valueobjects.NewMemoryID(),
		Date:        valueobjects.MustCalendarDate("2022-10-01"),
		Title:       "Hà Giang trip",
		Description: "Motorbikes & mountains",
	})
	return doc
}

func TestLoadOrDefault_AbsentRecord(t *testing.T) {
	adapter := NewDocumentAdapter(memory.NewKVStore(), nil)

	doc, err := adapter.LoadOrDefault(context.Background())

	require.NoError(t, err)
	assert.Equal(t, entities.DefaultDocument(), doc)
}

func TestLoadOrDefault_CorruptRecord(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "not json"},
		{name: "json string", raw: `"not json"`},
		{name: "missing fields", raw: `{"person1":{"name":"A"},"theme":{}}`},
		{name: "wrong types", raw: `{"person1":1,"person2":{},"startDate":"2023-01-01","memories":[],"theme":{}}`},
		{name: "invalid background", raw: `{"person1":{},"person2":{},"startDate":"2023-01-01","memories":[],"theme":{"backgroundType":"gif"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.NewKVStore()
			require.NoError(t, store.Put(ctx, StorageKey, []byte(tt.raw)))
			adapter := NewDocumentAdapter(store, nil)

			doc, err := adapter.LoadOrDefault(ctx)

			require.Error(t, err)
			assert.True(t, pkgerrors.IsCorruptState(err))
			assert.Equal(t, entities.DefaultDocument(), doc)
		})
	}
}

func TestLoadOrDefault_StoreUnavailable(t *testing.T) {
	adapter := NewDocumentAdapter(&failingStore{err: errors.New("disk gone")}, nil)

	doc, err := adapter.LoadOrDefault(context.Background())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsPersistenceUnavailable(err))
	assert.Equal(t, entities.DefaultDocument(), doc)
}

func TestSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()
	adapter := NewDocumentAdapter(store, nil)
	doc := sampleDocument()

	require.NoError(t, adapter.Save(ctx, doc))

	raw, err := store.Get(ctx, "lover_app_data")
	require.NoError(t, err)
	assert.True(t, json.Valid(raw))

	loaded, err := adapter.LoadOrDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}

func TestSave_StoreFailure(t *testing.T) {
	adapter := NewDocumentAdapter(&failingStore{err: errors.New("quota exceeded")}, nil)

	err := adapter.Save(context.Background(), sampleDocument())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsPersistenceUnavailable(err))
}

func TestSave_ValueTooLarge(t *testing.T) {
	adapter := NewDocumentAdapter(&failingStore{err: fmt.Errorf("%w: over the limit", ports.ErrValueTooLarge)}, nil)

	err := adapter.Save(context.Background(), sampleDocument())

	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrValueTooLarge)
	assert.False(t, pkgerrors.IsPersistenceUnavailable(err))
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, pkgerrors.CodeDocumentTooLarge, pkgerrors.GetAppError(err).Code)
}

func TestExportImportRoundTrip(t *testing.T) {
	adapter := NewDocumentAdapter(memory.NewKVStore(), nil)
	now := time.Date(2024, time.February, 14, 21, 0, 0, 0, time.UTC)

	for name, doc := range map[string]entities.AppDocument{
		"default": entities.DefaultDocument(),
		"sample":  sampleDocument(),
		"empty journal": func() entities.AppDocument {
			d := entities.DefaultDocument()
			d.Memories = []entities.Memory{}
			return d
		}(),
	} {
		t.Run(name, func(t *testing.T) {
			snapshot, err := adapter.ExportSnapshot(doc, now)
			require.NoError(t, err)
			assert.Equal(t, "love-journey-backup-2024-02-14.json", snapshot.Filename)

			imported, err := adapter.ImportSnapshot(snapshot.Data)
			require.NoError(t, err)
			assert.Equal(t, doc.Normalize(), imported)
		})
	}
}

func TestExportSnapshot_PlainDocumentJSON(t *testing.T) {
	adapter := NewDocumentAdapter(memory.NewKVStore(), nil)

	snapshot, err := adapter.ExportSnapshot(entities.DefaultDocument(), time.Now())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(snapshot.Data, &raw))
	assert.Len(t, raw, 5)
}

func TestImportSnapshot_Rejects(t *testing.T) {
	adapter := NewDocumentAdapter(memory.NewKVStore(), nil)

	tests := []struct {
		name    string
		data    string
		code    string
		missing []string
	}{
		{name: "not json", data: "hello", code: pkgerrors.CodeInvalidFormat},
		{name: "array", data: "[]", code: pkgerrors.CodeInvalidFormat},
		{
			name:    "missing memories and theme",
			data:    `{"person1":{},"person2":{},"startDate":"2023-01-01"}`,
			code:    pkgerrors.CodeMissingField,
			missing: []string{"memories", "theme"},
		},
		{
			name:    "null and empty count as missing",
			data:    `{"person1":null,"person2":{},"startDate":"","memories":[],"theme":{}}`,
			code:    pkgerrors.CodeMissingField,
			missing: []string{"person1", "startDate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := adapter.ImportSnapshot([]byte(tt.data))

			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
			appErr := pkgerrors.GetAppError(err)
			assert.Equal(t, tt.code, appErr.Code)
			if tt.missing != nil {
				assert.Equal(t, tt.missing, appErr.Details["fields"])
			}
		})
	}
}

func TestImportSnapshot_AcceptsEmptyMemoryList(t *testing.T) {
	adapter := NewDocumentAdapter(memory.NewKVStore(), nil)

	doc, err := adapter.ImportSnapshot([]byte(`{
		"person1": {"name": "A", "avatar": "", "birthDate": "1990-01-01", "description": ""},
		"person2": {"name": "B", "avatar": "", "birthDate": "1991-01-01", "description": ""},
		"startDate": "2020-05-20",
		"memories": [],
		"theme": {"backgroundUrl": "", "backgroundType": "video", "musicUrl": "", "accentColor": "#000"},
		"extra": true
	}`))

	require.NoError(t, err)
	assert.Empty(t, doc.Memories)
	assert.False(t, doc.Theme.HasMusic())
	assert.Equal(t, entities.BackgroundVideo, doc.Theme.BackgroundType)
}

func TestSnapshotFilename(t *testing.T) {
	now := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "love-journey-backup-2025-12-01.json", SnapshotFilename(now))
}

var _ ports.KeyValueStore = (*failingStore)(nil)
