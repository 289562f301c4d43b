package entities

import (
	"time"

	"forever-us/domain/core/valueobjects"
)

// Person is one of the two profile cards of the page
type Person struct {
	Name        string                    `json:"name"`
	Avatar      string                    `json:"avatar"`
	BirthDate   valueobjects.CalendarDate `json:"birthDate"`
	Description string                    `json:"description"`
}

// BackgroundType selects how the theme background is rendered
type BackgroundType string

const (
	BackgroundImage BackgroundType = "image"
	BackgroundVideo BackgroundType = "video"
)

// IsValid reports whether the background type is a known one
func (t BackgroundType) IsValid() bool {
	return t == BackgroundImage || t == BackgroundVideo
}

// ThemeConfig holds the page decoration. MusicURL is nil when no background
// music is configured.
type ThemeConfig struct {
	BackgroundURL  string         `json:"backgroundUrl"`
	BackgroundType BackgroundType `json:"backgroundType"`
	MusicURL       *string        `json:"musicUrl,omitempty"`
	AccentColor    string         `json:"accentColor"`
}

// HasMusic reports whether background music is configured
func (t ThemeConfig) HasMusic() bool {
	return t.MusicURL != nil
}

// AppDocument is the complete state of one anniversary page. It is the unit
// of persistence and of import/export.
type AppDocument struct {
	Person1   Person                    `json:"person1"`
	Person2   Person                    `json:"person2"`
	StartDate valueobjects.CalendarDate `json:"startDate"`
	Memories  []Memory                  `json:"memories"`
	Theme     ThemeConfig               `json:"theme"`
}

// Clone returns a deep copy that shares no mutable state with d
func (d AppDocument) Clone() AppDocument {
	out := d
	if d.Memories != nil {
		out.Memories = make([]Memory, len(d.Memories))
		for i, m := range d.Memories {
			out.Memories[i] = m.Clone()
		}
	}
	out.Theme.MusicURL = cloneString(d.Theme.MusicURL)
	return out
}

// WithMemories returns a copy of d whose memory collection is memories
func (d AppDocument) WithMemories(memories []Memory) AppDocument {
	out := d.Clone()
	out.Memories = make([]Memory, len(memories))
	for i, m := range memories {
		out.Memories[i] = m.Clone()
	}
	return out
}

// Normalize folds empty optional values into absent ones and makes sure the
// memory collection is never nil, so equal documents serialize identically.
func (d AppDocument) Normalize() AppDocument {
	out := d.Clone()
	if out.Memories == nil {
		out.Memories = []Memory{}
	}
	for i := range out.Memories {
		out.Memories[i].Link = OptionalString(derefString(out.Memories[i].Link))
	}
	out.Theme.MusicURL = OptionalString(derefString(out.Theme.MusicURL))
	return out
}

// DaysElapsed is the number of started days between the start date and now,
// in either direction: ceil(|now - startDate| / 24h).
func (d AppDocument) DaysElapsed(now time.Time) int {
	diff := now.Sub(d.StartDate.Time())
	if diff < 0 {
		diff = -diff
	}

	const day = 24 * time.Hour
	days := int(diff / day)
	if diff%day != 0 {
		days++
	}
	return days
}

// OptionalString returns nil for the empty string and a pointer to s otherwise
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
