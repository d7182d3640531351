package validation

import (
	"errors"
	"fmt"
	"net/http"
)

// MultipartBuffer is the allowance for form fields and multipart framing on top of
// the attachment size limit.
const MultipartBuffer int64 = 1 << 20

// maxMemory is how much of the form is kept in memory, the rest spills to temp files
const maxMemory int64 = 32 << 20

// ValidateAndParseMultipart limits the body to maxSize and parses the multipart form.
// When the limit is hit the server stops reading, which clients may observe as a
// connection reset.
func ValidateAndParseMultipart(r *http.Request, w http.ResponseWriter, maxSize int64) error {
	if r.ContentLength > maxSize {
		return fmt.Errorf("%w: request exceeds %.1f MB", ErrPayloadTooLarge, FormatSizeMB(maxSize))
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(min(maxSize, maxMemory)); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request exceeds %.1f MB", ErrPayloadTooLarge, FormatSizeMB(maxSize))
		}
		return fmt.Errorf("%w: %v", ErrInvalidMultipart, err)
	}
	return nil
}

// CalculateMaxRequestSize returns the maximum request size including overhead buffer.
func CalculateMaxRequestSize(maxAttachmentSize int64, bufferSize int64) int64 {
	return maxAttachmentSize + bufferSize
}

// FormatSizeMB converts bytes to megabytes for user-friendly error messages.
func FormatSizeMB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}
