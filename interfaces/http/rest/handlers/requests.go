package handlers

import (
	"errors"
	"net/http"

	"forever-us/domain/core/entities"
	"forever-us/domain/core/valueobjects"
	pkgerrors "forever-us/pkg/errors"
)

// maxDocumentBytes bounds a PUT document body; avatars may be inline images
const maxDocumentBytes = 32 << 20

// PersonRequest is one profile card in a document body
type PersonRequest struct {
	Name        string `json:"name" validate:"max=100"`
	Avatar      string `json:"avatar"`
	BirthDate   string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Description string `json:"description" validate:"max=2000"`
}

// MemoryRequest is one journal entry in a document body
type MemoryRequest struct {
	ID          string  `json:"id" validate:"required,max=64"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Link        *string `json:"link,omitempty"`
}

// ThemeRequest is the theme section of a document body
type ThemeRequest struct {
	BackgroundURL  string  `json:"backgroundUrl"`
	BackgroundType string  `json:"backgroundType" validate:"required,oneof=image video"`
	MusicURL       *string `json:"musicUrl,omitempty"`
	AccentColor    string  `json:"accentColor" validate:"omitempty,iscolor"`
}

// DocumentRequest is the body of PUT /document
type DocumentRequest struct {
	Person1   PersonRequest   `json:"person1"`
	Person2   PersonRequest   `json:"person2"`
	StartDate string          `json:"startDate" validate:"required,datetime=2006-01-02"`
	Memories  []MemoryRequest `json:"memories" validate:"required,max=10000,dive"`
	Theme     ThemeRequest    `json:"theme"`
}

// ToEntity converts a validated request into an AppDocument
func (req DocumentRequest) ToEntity() (entities.AppDocument, error) {
	start, err := valueobjects.ParseCalendarDate(req.StartDate)
	if err != nil {
		return entities.AppDocument{}, invalidFormat(err)
	}

	person1, err := req.Person1.toEntity()
	if err != nil {
		return entities.AppDocument{}, err
	}
	person2, err := req.Person2.toEntity()
	if err != nil {
		return entities.AppDocument{}, err
	}

	memories := make([]entities.Memory, 0, len(req.Memories))
	for _, m := range req.Memories {
		memory, err := m.toEntity()
		if err != nil {
			return entities.AppDocument{}, err
		}
		memories = append(memories, memory)
	}

	return entities.AppDocument{
		Person1:   person1,
		Person2:   person2,
		StartDate: start,
		Memories:  memories,
		Theme: entities.ThemeConfig{
			BackgroundURL:  req.Theme.BackgroundURL,
			BackgroundType: entities.BackgroundType(req.Theme.BackgroundType),
			MusicURL:       req.Theme.MusicURL,
			AccentColor:    req.Theme.AccentColor,
		},
	}.Normalize(), nil
}

func (p PersonRequest) toEntity() (entities.Person, error) {
	person := entities.Person{
		Name:        p.Name,
		Avatar:      p.Avatar,
		Description: p.Description,
	}
	if p.BirthDate != "" {
		birth, err := valueobjects.ParseCalendarDate(p.BirthDate)
		if err != nil {
			return entities.Person{}, invalidFormat(err)
		}
		person.BirthDate = birth
	}
	return person, nil
}

func (m MemoryRequest) toEntity() (entities.Memory, error) {
	id, err := valueobjects.NewMemoryIDFromString(m.ID)
	if err != nil {
		return entities.Memory{}, invalidFormat(err)
	}
	date, err := valueobjects.ParseCalendarDate(m.Date)
	if err != nil {
		return entities.Memory{}, invalidFormat(err)
	}
	return entities.Memory{
		ID:          id,
		Date:        date,
		Title:       m.Title,
		Description: m.Description,
		Link:        m.Link,
	}, nil
}

// CreateMemoryRequest is the body of POST /memories. Presence of date and
// title is checked by the journal itself so the error names both fields.
type CreateMemoryRequest struct {
	Date        string `json:"date" validate:"max=32"`
	Title       string `json:"title" validate:"max=200"`
	Description string `json:"description" validate:"max=5000"`
	Link        string `json:"link" validate:"omitempty,max=2048"`
}

// ToCandidate converts the request into a memory candidate
func (req CreateMemoryRequest) ToCandidate() entities.MemoryCandidate {
	return entities.MemoryCandidate{
		Date:        req.Date,
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
	}
}

func invalidFormat(err error) error {
	return pkgerrors.NewValidationError(err.Error()).WithCode(pkgerrors.CodeInvalidFormat)
}

// bodyError classifies a request body decoding failure
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerrors.NewUploadTooLargeError(tooLarge.Limit)
	}
	return pkgerrors.NewValidationError("invalid request body").
		WithCode(pkgerrors.CodeInvalidFormat).
		WithCause(err)
}
