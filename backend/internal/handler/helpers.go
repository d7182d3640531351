package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/itchan-dev/postwall/backend/internal/errors"
	"github.com/itchan-dev/postwall/backend/internal/utils"
	"github.com/itchan-dev/postwall/shared/domain"
	"github.com/itchan-dev/postwall/shared/validation"
)

// parseMultipartRequest parses a multipart form, decodes the "json" part into body and
// opens the files of fileField. The returned cleanup closes the files and removes any
// temp files of the form; it is never nil.
func parseMultipartRequest[T any](w http.ResponseWriter, r *http.Request, h *Handler, fileField string, jsonRequired bool) (body T, pendingFiles []*domain.PendingFile, cleanup func(), err error) {
	cleanup = func() {}

	maxRequestSize := validation.CalculateMaxRequestSize(h.cfg.Public.MaxTotalAttachmentSize, validation.MultipartBuffer)
	if err = validation.ValidateAndParseMultipart(r, w, maxRequestSize); err != nil {
		return
	}
	form := r.MultipartForm
	cleanup = func() { form.RemoveAll() }

	jsonPayload := r.FormValue("json")
	if jsonPayload == "" && jsonRequired {
		err = errors.NewInvalidInput("missing JSON payload in multipart form")
		return
	}
	if jsonPayload != "" {
		if err = utils.DecodeValidate(strings.NewReader(jsonPayload), &body); err != nil {
			return
		}
	}

	pendingFiles, err = validation.CollectAttachments(
		form.File[fileField],
		h.cfg.Public.MaxAttachmentsPerPost,
		h.cfg.Public.MaxTotalAttachmentSize,
	)
	if err != nil {
		return
	}
	cleanup = func() {
		validation.CloseAttachments(pendingFiles)
		form.RemoveAll()
	}
	return
}

// contentDisposition builds an inline disposition header for a stored name.
func contentDisposition(name string) string {
	return fmt.Sprintf("inline; filename=%q", name)
}
