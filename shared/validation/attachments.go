package validation

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/itchan-dev/postwall/shared/domain"
)

// CollectAttachments opens every uploaded file of the form field and checks the count
// and total size limits. Empty uploads are kept (the service skips them) but do not
// count against the limits. On error every opened file is closed.
func CollectAttachments(fileHeaders []*multipart.FileHeader, maxCount int, maxTotalSize int64) ([]*domain.PendingFile, error) {
	if len(fileHeaders) == 0 {
		return nil, nil
	}

	var (
		count int
		total int64
	)
	for _, fh := range fileHeaders {
		if fh.Size == 0 {
			continue
		}
		count++
		total += fh.Size
	}
	if count > maxCount {
		return nil, fmt.Errorf("%w: %d files, at most %d allowed", ErrTooManyAttachments, count, maxCount)
	}
	if total > maxTotalSize {
		return nil, fmt.Errorf("%w: attachments total %.1f MB, at most %.1f MB allowed", ErrPayloadTooLarge, FormatSizeMB(total), FormatSizeMB(maxTotalSize))
	}

	files := make([]*domain.PendingFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		file, err := fh.Open()
		if err != nil {
			CloseAttachments(files)
			return nil, fmt.Errorf("failed to open uploaded file %q: %w", fh.Filename, err)
		}
		files = append(files, &domain.PendingFile{
			Filename: fh.Filename,
			Size:     fh.Size,
			Data:     file,
		})
	}
	return files, nil
}

// CloseAttachments closes the data streams opened by CollectAttachments.
func CloseAttachments(files []*domain.PendingFile) {
	for _, f := range files {
		if c, ok := f.Data.(io.Closer); ok {
			c.Close()
		}
	}
}
