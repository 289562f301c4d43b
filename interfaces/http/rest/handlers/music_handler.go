package handlers

import (
	"net/http"

	"forever-us/domain/core/entities"
	"forever-us/pkg/common"
)

// ListMusic handles GET /music
func ListMusic(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, entities.MusicOptions())
}
