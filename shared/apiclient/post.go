package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/itchan-dev/postwall/shared/api"
)

// Attachment is a file sent with a create or update request.
type Attachment struct {
	Name    string
	Content io.Reader
}

func postPath(userId, postId string) string {
	return fmt.Sprintf("/v1/posts/%s/%s", url.PathEscape(userId), url.PathEscape(postId))
}

func (c *APIClient) CreatePost(ctx context.Context, userId string, req api.CreatePostRequest, files ...Attachment) (*api.PostResponse, error) {
	body, contentType, err := multipartBody(map[string]string{"userId": userId}, req, "files", files)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/v1/posts/create", body, contentType)
	if err != nil {
		return nil, err
	}
	if err := expect(resp, http.StatusCreated); err != nil {
		return nil, err
	}
	post, err := decode[api.PostResponse](resp)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *APIClient) GetPost(ctx context.Context, userId, postId string) (*api.PostResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, postPath(userId, postId), nil, "")
	if err != nil {
		return nil, err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return nil, err
	}
	post, err := decode[api.PostResponse](resp)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *APIClient) GetPostsByUser(ctx context.Context, userId string) ([]api.PostResponse, error) {
	return c.list(ctx, "/v1/posts/user/"+url.PathEscape(userId))
}

func (c *APIClient) GetAllPosts(ctx context.Context) ([]api.PostResponse, error) {
	return c.list(ctx, "/v1/posts/all")
}

func (c *APIClient) list(ctx context.Context, path string) ([]api.PostResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	if err := expect(resp, http.StatusOK, http.StatusNoContent); err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNoContent {
		resp.Body.Close()
		return []api.PostResponse{}, nil
	}
	return decode[[]api.PostResponse](resp)
}

func (c *APIClient) UpdatePost(ctx context.Context, userId, postId string, req api.UpdatePostRequest, newFiles ...Attachment) (*api.UpdatePostResponse, error) {
	body, contentType, err := multipartBody(nil, req, "newFiles", newFiles)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPut, postPath(userId, postId), body, contentType)
	if err != nil {
		return nil, err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return nil, err
	}
	updated, err := decode[api.UpdatePostResponse](resp)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *APIClient) DeletePost(ctx context.Context, userId, postId string) (*api.DeletePostResponse, error) {
	resp, err := c.do(ctx, http.MethodDelete, postPath(userId, postId), nil, "")
	if err != nil {
		return nil, err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return nil, err
	}
	deleted, err := decode[api.DeletePostResponse](resp)
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// GetMedia returns the media body and its content type. The caller closes the body.
func (c *APIClient) GetMedia(ctx context.Context, name string) (io.ReadCloser, string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/posts/media/"+url.PathEscape(name), nil, "")
	if err != nil {
		return nil, "", err
	}
	if err := expect(resp, http.StatusOK); err != nil {
		return nil, "", err
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func multipartBody(fields map[string]string, payload any, fileField string, files []Attachment) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request: %w", err)
	}
	if err := mw.WriteField("json", string(encoded)); err != nil {
		return nil, "", err
	}

	for _, f := range files {
		w, err := mw.CreateFormFile(fileField, f.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(w, f.Content); err != nil {
			return nil, "", fmt.Errorf("failed to read attachment %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}
