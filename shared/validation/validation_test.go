package validation

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upload struct {
	name    string
	content string
}

func multipartRequest(t *testing.T, fields map[string]string, field string, files ...upload) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/posts/create", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestValidateAndParseMultipart(t *testing.T) {
	t.Run("parses fields and files", func(t *testing.T) {
		req := multipartRequest(t, map[string]string{"userId": "u1"}, "files", upload{"a.txt", "hello"})
		rec := httptest.NewRecorder()

		require.NoError(t, ValidateAndParseMultipart(req, rec, 1<<20))
		assert.Equal(t, "u1", req.FormValue("userId"))
		assert.Len(t, req.MultipartForm.File["files"], 1)
	})

	t.Run("body over limit", func(t *testing.T) {
		req := multipartRequest(t, nil, "files", upload{"big.bin", strings.Repeat("x", 4096)})
		rec := httptest.NewRecorder()

		err := ValidateAndParseMultipart(req, rec, 1024)
		assert.True(t, errors.Is(err, ErrPayloadTooLarge))
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/posts/create", strings.NewReader(`{"a":1}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		err := ValidateAndParseMultipart(req, rec, 1<<20)
		assert.True(t, errors.Is(err, ErrInvalidMultipart))
	})
}

func TestCollectAttachments(t *testing.T) {
	parse := func(t *testing.T, files ...upload) []*multipart.FileHeader {
		req := multipartRequest(t, nil, "files", files...)
		require.NoError(t, ValidateAndParseMultipart(req, httptest.NewRecorder(), 1<<20))
		return req.MultipartForm.File["files"]
	}

	t.Run("no files", func(t *testing.T) {
		files, err := CollectAttachments(nil, 5, 100)
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("opens files in order", func(t *testing.T) {
		files, err := CollectAttachments(parse(t, upload{"a.txt", "aa"}, upload{"b.txt", "b"}), 5, 100)
		require.NoError(t, err)
		defer CloseAttachments(files)

		require.Len(t, files, 2)
		assert.Equal(t, "a.txt", files[0].Filename)
		assert.Equal(t, int64(2), files[0].Size)
		content, err := io.ReadAll(files[1].Data)
		require.NoError(t, err)
		assert.Equal(t, "b", string(content))
	})

	t.Run("empty uploads do not count", func(t *testing.T) {
		files, err := CollectAttachments(parse(t, upload{"a.txt", "a"}, upload{"empty.txt", ""}), 1, 100)
		require.NoError(t, err)
		defer CloseAttachments(files)
		assert.Len(t, files, 2)
	})

	t.Run("too many", func(t *testing.T) {
		_, err := CollectAttachments(parse(t, upload{"a.txt", "a"}, upload{"b.txt", "b"}), 1, 100)
		assert.True(t, errors.Is(err, ErrTooManyAttachments))
	})

	t.Run("total too large", func(t *testing.T) {
		_, err := CollectAttachments(parse(t, upload{"a.txt", "aaaa"}, upload{"b.txt", "bbbb"}), 5, 6)
		assert.True(t, errors.Is(err, ErrPayloadTooLarge))
	})
}

func TestCalculateMaxRequestSize(t *testing.T) {
	assert.Equal(t, int64(10+MultipartBuffer), CalculateMaxRequestSize(10, MultipartBuffer))
	assert.InDelta(t, 1.5, FormatSizeMB(3<<19), 0.0001)
}
