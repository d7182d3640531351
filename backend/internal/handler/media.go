package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/itchan-dev/postwall/backend/internal/utils"
)

// GetMedia streams a stored media file inline. Range and conditional requests are
// handled by http.ServeContent.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	file, err := h.post.GetMedia(filename)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	defer file.Content.Close()

	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Disposition", contentDisposition(file.Name))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, file.Name, file.ModTime, file.Content)
}
