package entities

import (
	"forever-us/domain/core/valueobjects"
)

// Memory is a single dated journal entry. Memories are never edited in
// place; a changed entry is a delete followed by a new add.
type Memory struct {
	ID          valueobjects.MemoryID     `json:"id"`
	Date        valueobjects.CalendarDate `json:"date"`
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Link        *string                   `json:"link,omitempty"`
}

// HasLink reports whether the memory carries an image or URL
func (m Memory) HasLink() bool {
	return m.Link != nil
}

// Clone returns a copy of m that does not share the link pointer
func (m Memory) Clone() Memory {
	out := m
	out.Link = cloneString(m.Link)
	return out
}

// MemoryCandidate is the caller-supplied part of a new memory. The id is
// always assigned by the store.
type MemoryCandidate struct {
	Date        string
	Title       string
	Description string
	Link        string
}
