package domain

import (
	"io"
	"time"
)

// PendingFile is an uploaded stream that has not been stored yet.
// Size == 0 marks an empty upload.
type PendingFile struct {
	Filename string
	Size     int64
	Data     io.Reader
}

// MediaFile is a stored media file opened for reading. The caller closes Content.
type MediaFile struct {
	Name     string
	MimeType string
	Size     int64
	ModTime  time.Time
	Content  io.ReadSeekCloser
}

type MediaRemovalFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// CleanupReport aggregates the outcome of removing a batch of media files.
type CleanupReport struct {
	Removed []string              `json:"removed"`
	Failed  []MediaRemovalFailure `json:"failed"`
}

func NewCleanupReport() *CleanupReport {
	return &CleanupReport{Removed: []string{}, Failed: []MediaRemovalFailure{}}
}

func (r *CleanupReport) AddRemoved(name string) {
	r.Removed = append(r.Removed, name)
}

func (r *CleanupReport) AddFailure(name string, err error) {
	r.Failed = append(r.Failed, MediaRemovalFailure{Name: name, Error: err.Error()})
}

func (r *CleanupReport) HasFailures() bool {
	return len(r.Failed) > 0
}
