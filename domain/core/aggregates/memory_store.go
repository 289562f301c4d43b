package aggregates

import (
	"sort"
	"strings"

	"forever-us/domain/core/entities"
	"forever-us/domain/core/valueobjects"
	pkgerrors "forever-us/pkg/errors"
)

// maxIDAttempts bounds the retries when a generated id is already taken
const maxIDAttempts = 16

// IDGenerator produces candidate identifiers for new memories
type IDGenerator func() valueobjects.MemoryID

// Page is one slice of the memory journal, newest first
type Page struct {
	Items       []entities.Memory `json:"items"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
	TotalItems  int               `json:"totalItems"`
	PageSize    int               `json:"pageSize"`
}

// MemoryStore owns an ordered collection of memories. Insertion order is
// kept so that entries sharing a date list in the order they were added.
type MemoryStore struct {
	entries []entities.Memory
	newID   IDGenerator
}

// MemoryStoreOption configures a MemoryStore
type MemoryStoreOption func(*MemoryStore)

// WithIDGenerator replaces the default UUIDv7 generator
func WithIDGenerator(gen IDGenerator) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.newID = gen
	}
}

// NewMemoryStore creates a store over a copy of entries
func NewMemoryStore(entries []entities.Memory, opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		entries: cloneMemories(entries),
		newID:   valueobjects.NewMemoryID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates the candidate, assigns it a fresh id and appends it. Title,
// description and link are stored exactly as given; escaping is left to
// whoever renders them.
func (s *MemoryStore) Add(candidate entities.MemoryCandidate) (entities.Memory, error) {
	rawDate := strings.TrimSpace(candidate.Date)

	var missing []string
	if rawDate == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(candidate.Title) == "" {
		missing = append(missing, "title")
	}
	if len(missing) > 0 {
		return entities.Memory{}, pkgerrors.NewMissingFieldsError(missing)
	}

	date, err := valueobjects.ParseCalendarDate(rawDate)
	if err != nil {
		return entities.Memory{}, pkgerrors.NewValidationError(err.Error()).
			WithCode(pkgerrors.CodeInvalidFormat)
	}

	id, err := s.uniqueID()
	if err != nil {
		return entities.Memory{}, err
	}

	memory := entities.Memory{
		ID:          id,
		Date:        date,
		Title:       candidate.Title,
		Description: candidate.Description,
		Link:        entities.OptionalString(candidate.Link),
	}
	s.entries = append(s.entries, memory)

	return memory.Clone(), nil
}

// Delete removes the memory with the given id. Unknown ids are ignored; the
// return value reports whether anything was removed.
func (s *MemoryStore) Delete(id string) bool {
	for i, m := range s.entries {
		if m.ID.String() == id {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// ListPage returns the memories sorted by date descending and sliced to the
// requested page. Out-of-range pages are clamped to the nearest valid one.
func (s *MemoryStore) ListPage(pageNumber, pageSize int) (Page, error) {
	if pageSize <= 0 {
		return Page{}, pkgerrors.NewValidationError("page size must be positive").
			WithCode(pkgerrors.CodeInvalidPagination)
	}

	total := len(s.entries)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	page := Page{
		Items:       []entities.Memory{},
		TotalPages:  totalPages,
		CurrentPage: 1,
		TotalItems:  total,
		PageSize:    pageSize,
	}
	if totalPages == 0 {
		return page, nil
	}

	switch {
	case pageNumber < 1:
		pageNumber = 1
	case pageNumber > totalPages:
		pageNumber = totalPages
	}
	page.CurrentPage = pageNumber

	sorted := s.Sorted()
	// pageNumber <= totalPages keeps start within total
	start := (pageNumber - 1) * pageSize
	end := total
	if total-start > pageSize {
		end = start + pageSize
	}
	page.Items = sorted[start:end]

	return page, nil
}

// Sorted returns every memory ordered by date descending. The sort is stable,
// so memories on the same day keep their insertion order.
func (s *MemoryStore) Sorted() []entities.Memory {
	sorted := cloneMemories(s.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Compare(sorted[j].Date) > 0
	})
	return sorted
}

// Entries returns a copy of the collection in insertion order
func (s *MemoryStore) Entries() []entities.Memory {
	return cloneMemories(s.entries)
}

// Len returns the number of memories
func (s *MemoryStore) Len() int {
	return len(s.entries)
}

func (s *MemoryStore) uniqueID() (valueobjects.MemoryID, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.newID()
		if id.IsZero() {
			continue
		}
		if !s.contains(id) {
			return id, nil
		}
	}
	return valueobjects.MemoryID{}, pkgerrors.NewInternalError("could not allocate a unique memory id")
}

func (s *MemoryStore) contains(id valueobjects.MemoryID) bool {
	for _, m := range s.entries {
		if m.ID.Equals(id) {
			return true
		}
	}
	return false
}

func cloneMemories(in []entities.Memory) []entities.Memory {
	out := make([]entities.Memory, len(in))
	for i, m := range in {
		out[i] = m.Clone()
	}
	return out
}
