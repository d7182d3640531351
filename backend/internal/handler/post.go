package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/itchan-dev/postwall/backend/internal/utils"
	"github.com/itchan-dev/postwall/shared/api"
	"github.com/itchan-dev/postwall/shared/domain"
	"github.com/itchan-dev/postwall/shared/logger"
)

func (h *Handler) postResponse(p *domain.Post) api.PostResponse {
	return api.NewPostResponse(p, h.renderer.Render)
}

func (h *Handler) postListResponse(posts []*domain.Post) []api.PostResponse {
	resp := make([]api.PostResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, h.postResponse(p))
	}
	return resp
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	body, files, cleanup, err := parseMultipartRequest[api.CreatePostRequest](w, r, h, "files", true)
	defer cleanup()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.post.Create(r.Context(), domain.PostCreationData{
		UserId: r.FormValue("userId"),
		Fields: body.Fields(),
		Files:  files,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	logger.Log.Info("post created", "postId", post.Id, "userId", post.UserId, "media", len(post.MediaIds))
	writeJSON(w, http.StatusCreated, h.postResponse(post))
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.post.Get(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "postId"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.postResponse(post))
}

func (h *Handler) GetPostsByUser(w http.ResponseWriter, r *http.Request) {
	posts, err := h.post.GetByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if len(posts) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, h.postListResponse(posts))
}

func (h *Handler) GetAllPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.post.GetAll(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if len(posts) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, h.postListResponse(posts))
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	body, files, cleanup, err := parseMultipartRequest[api.UpdatePostRequest](w, r, h, "newFiles", false)
	defer cleanup()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, report, err := h.post.Update(r.Context(), domain.PostUpdateData{
		UserId:         chi.URLParam(r, "userId"),
		PostId:         chi.URLParam(r, "postId"),
		Patch:          body.Patch(),
		DeleteMediaIds: body.ToBeDeletedMediaIds,
		Files:          files,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	logger.Log.Info("post updated", "postId", post.Id, "mediaRemoved", len(report.Removed), "mediaFailed", len(report.Failed))
	writeJSON(w, http.StatusOK, api.UpdatePostResponse{
		PostResponse: h.postResponse(post),
		MediaFailed:  report.Failed,
	})
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postId := chi.URLParam(r, "postId")
	report, err := h.post.Delete(r.Context(), chi.URLParam(r, "userId"), postId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	message := "Post and associated media deleted successfully"
	if report.HasFailures() {
		message = "Post deleted, some media files could not be removed"
	}
	logger.Log.Info("post deleted", "postId", postId, "mediaRemoved", len(report.Removed), "mediaFailed", len(report.Failed))
	writeJSON(w, http.StatusOK, api.DeletePostResponse{
		Message:      message,
		MediaRemoved: report.Removed,
		MediaFailed:  report.Failed,
	})
}
