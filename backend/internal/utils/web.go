package utils

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/itchan-dev/postwall/backend/internal/errors"
	"github.com/itchan-dev/postwall/shared/logger"
	"github.com/itchan-dev/postwall/shared/validation"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// WriteErrorAndStatusCode maps err to a status code. Messages of 500 responses are
// logged but never sent to the client.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	status := errors.StatusCode(err)
	switch {
	case stderrors.Is(err, validation.ErrPayloadTooLarge):
		status = http.StatusRequestEntityTooLarge
	case stderrors.Is(err, validation.ErrTooManyAttachments), stderrors.Is(err, validation.ErrInvalidMultipart):
		status = http.StatusBadRequest
	}

	if status >= http.StatusInternalServerError {
		logger.Log.Error("request failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Error(w, err.Error(), status)
}

// DecodeValidate decodes a JSON document into body and runs struct validation.
func DecodeValidate(r io.Reader, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("invalid json body", "error", err)
		return errors.NewInvalidInput("Body is invalid json")
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("body failed validation", "error", err)
		return errors.NewInvalidInput("Required fields missing or invalid")
	}
	return nil
}
