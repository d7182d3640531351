package service

import (
	"io"

	"github.com/itchan-dev/postwall/shared/domain"
)

type MediaStorage interface {
	// Store persists the stream under a generated, collision-resistant name derived
	// from originalName and returns that name.
	Store(originalName string, data io.Reader) (string, error)

	// Resolve opens a stored file for reading. Missing files are NotFound.
	Resolve(storedName string) (*domain.MediaFile, error)

	// Remove deletes a stored file. Removing a missing file is not an error.
	Remove(storedName string) error
}
