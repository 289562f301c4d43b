package valueobjects

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MemoryID is a value object representing a unique memory identifier.
// New identifiers are UUIDv7, so they carry their generation time and sort
// by it; identifiers read back from storage are treated as opaque strings.
type MemoryID struct {
	value string
}

// NewMemoryID creates a new time-ordered MemoryID
func NewMemoryID() MemoryID {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does
		return MemoryID{value: uuid.New().String()}
	}
	return MemoryID{value: id.String()}
}

// NewMemoryIDFromString wraps an existing identifier
func NewMemoryIDFromString(id string) (MemoryID, error) {
	if id == "" {
		return MemoryID{}, errors.New("memory ID cannot be empty")
	}
	return MemoryID{value: id}, nil
}

// String returns the string representation of the MemoryID
func (id MemoryID) String() string {
	return id.value
}

// Equals checks if two MemoryIDs are equal
func (id MemoryID) Equals(other MemoryID) bool {
	return id.value == other.value
}

// IsZero checks if the MemoryID is the zero value
func (id MemoryID) IsZero() bool {
	return id.value == ""
}

// CreatedAt reports the generation time embedded in a UUIDv7 identifier.
// It returns false for identifiers that are not UUIDv7 (for example the
// numeric ids of the seed document).
func (id MemoryID) CreatedAt() (time.Time, bool) {
	parsed, err := uuid.Parse(id.value)
	if err != nil || parsed.Version() != 7 {
		return time.Time{}, false
	}
	sec, nsec := parsed.Time().UnixTime()
	return time.Unix(sec, nsec).UTC(), true
}

// MarshalJSON implements json.Marshaler
func (id MemoryID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *MemoryID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("MemoryID must be a string")
	}
	id.value = s
	return nil
}
