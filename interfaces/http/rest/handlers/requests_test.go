package handlers

import (
	"net/http"
	"testing"

	"forever-us/domain/core/entities"
	pkgerrors "forever-us/pkg/errors"
	"forever-us/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRequest_ToEntity(t *testing.T) {
	empty := ""
	req := DocumentRequest{
		Person1:   PersonRequest{Name: "A", BirthDate: "1999-09-09"},
		Person2:   PersonRequest{Name: "B"},
		StartDate: "2022-01-02",
		Memories: []MemoryRequest{
			{ID: "m1", Date: "2022-03-04", Title: "First", Link: &empty},
		},
		Theme: ThemeRequest{BackgroundType: "video", MusicURL: &empty},
	}
	require.NoError(t, utils.ValidateStruct(req))

	doc, err := req.ToEntity()
	require.NoError(t, err)

	assert.Equal(t, "2022-01-02", doc.StartDate.String())
	assert.Equal(t, "1999-09-09", doc.Person1.BirthDate.String())
	assert.True(t, doc.Person2.BirthDate.IsZero())
	assert.Equal(t, entities.BackgroundVideo, doc.Theme.BackgroundType)
	require.Len(t, doc.Memories, 1)
	assert.False(t, doc.Memories[0].HasLink(), "empty link folds to absent")
	assert.False(t, doc.Theme.HasMusic())
}

func TestDocumentRequest_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  DocumentRequest
	}{
		{
			name: "missing memories",
			req:  DocumentRequest{StartDate: "2022-01-02", Theme: ThemeRequest{BackgroundType: "image"}},
		},
		{
			name: "bad accent color",
			req: DocumentRequest{
				StartDate: "2022-01-02",
				Memories:  []MemoryRequest{},
				Theme:     ThemeRequest{BackgroundType: "image", AccentColor: "pinkish"},
			},
		},
		{
			name: "bad memory date",
			req: DocumentRequest{
				StartDate: "2022-01-02",
				Memories:  []MemoryRequest{{ID: "1", Date: "March 4", Title: "x"}},
				Theme:     ThemeRequest{BackgroundType: "image"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := utils.ValidateStruct(tt.req)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
		})
	}
}

func TestBodyError(t *testing.T) {
	tooLarge := bodyError(&http.MaxBytesError{Limit: 10})
	appErr := pkgerrors.GetAppError(tooLarge)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUploadTooLarge, appErr.Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, appErr.HTTPStatus)

	generic := pkgerrors.GetAppError(bodyError(assert.AnError))
	require.NotNil(t, generic)
	assert.Equal(t, pkgerrors.CodeInvalidFormat, generic.Code)
}
