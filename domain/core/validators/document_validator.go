package validators

import (
	"fmt"
	"strings"

	"forever-us/domain/core/entities"
	"forever-us/pkg/errors"
)

// DocumentValidator checks the invariants a committed AppDocument must hold
type DocumentValidator struct {
	maxMemories int
}

// NewDocumentValidator creates a validator with default limits
func NewDocumentValidator() *DocumentValidator {
	return &DocumentValidator{
		maxMemories: 10000,
	}
}

// Validate returns a validation error listing every violated rule, or nil
func (v *DocumentValidator) Validate(doc entities.AppDocument) error {
	var violations []string

	if doc.StartDate.IsZero() {
		violations = append(violations, "startDate is required")
	}

	if !doc.Theme.BackgroundType.IsValid() {
		violations = append(violations, fmt.Sprintf("theme.backgroundType must be one of: %s %s",
			entities.BackgroundImage, entities.BackgroundVideo))
	}

	if len(doc.Memories) > v.maxMemories {
		violations = append(violations, fmt.Sprintf("memories exceeds maximum of %d entries", v.maxMemories))
	}

	seen := make(map[string]struct{}, len(doc.Memories))
	for i, m := range doc.Memories {
		if m.ID.IsZero() {
			violations = append(violations, fmt.Sprintf("memories[%d].id is required", i))
		} else if _, dup := seen[m.ID.String()]; dup {
			violations = append(violations, fmt.Sprintf("memories[%d].id %q is not unique", i, m.ID.String()))
		} else {
			seen[m.ID.String()] = struct{}{}
		}
		if m.Date.IsZero() {
			violations = append(violations, fmt.Sprintf("memories[%d].date is required", i))
		}
		if strings.TrimSpace(m.Title) == "" {
			violations = append(violations, fmt.Sprintf("memories[%d].title is required", i))
		}
	}

	if len(violations) == 0 {
		return nil
	}

	return errors.NewValidationError("invalid document: " + strings.Join(violations, "; ")).
		WithCode(errors.CodeInvalidDocument).
		WithDetails(map[string]interface{}{"violations": violations})
}
