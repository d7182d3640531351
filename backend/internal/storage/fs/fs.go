package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	internal_errors "github.com/itchan-dev/postwall/backend/internal/errors"
	"github.com/itchan-dev/postwall/backend/internal/service"
	"github.com/itchan-dev/postwall/shared/domain"
)

const (
	// yyyyMMdd_HHmmss, milliseconds are appended separately to keep the format free of dots
	timestampLayout = "20060102_150405"
	tempPrefix      = ".upload-"
	defaultMimeType = "application/octet-stream"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Storage keeps media files flat in a single root directory.
type Storage struct {
	rootPath string
	now      func() time.Time
}

// Ensure Storage struct implements the interfaces at compile time.
var (
	_ service.MediaStorage   = (*Storage)(nil)
	_ service.GCMediaStorage = (*Storage)(nil)
)

// New prepares the media root. It creates the directory (and parents) when absent and
// verifies that it is writable.
func New(rootPath string) (*Storage, error) {
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, internal_errors.NewStorageFault(fmt.Sprintf("failed to create media directory %s", p), err)
	}

	probe, err := os.CreateTemp(p, tempPrefix+"probe-*")
	if err != nil {
		return nil, internal_errors.NewStorageFault(fmt.Sprintf("media directory %s is not writable", p), err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return &Storage{rootPath: p, now: time.Now}, nil
}

func (s *Storage) RootPath() string {
	return s.rootPath
}

// SanitizeFilename reduces an uploaded name to a safe leaf name: directory components
// are dropped and whitespace runs become underscores.
func SanitizeFilename(originalName string) (string, error) {
	if strings.TrimSpace(originalName) == "" {
		return "", internal_errors.NewInvalidInput("original filename is required")
	}
	name := strings.ReplaceAll(originalName, `\`, "/")
	name = strings.ReplaceAll(name, "\x00", "")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "_")
	if name == "" || name == "." || name == ".." {
		return "", internal_errors.NewInvalidInput("invalid filename %q", originalName)
	}
	return name, nil
}

// StoredName builds "<yyyyMMdd_HHmmssSSS>_<name>".
func StoredName(t time.Time, sanitizedName string) string {
	t = t.UTC()
	return fmt.Sprintf("%s%03d_%s", t.Format(timestampLayout), t.Nanosecond()/int(time.Millisecond), sanitizedName)
}

// Store writes the stream under a fresh stored name and returns that name. The data is
// fully written to a temporary file first and then renamed into place, so a returned
// name always refers to a complete file. An existing file with the same name is replaced.
func (s *Storage) Store(originalName string, data io.Reader) (string, error) {
	sanitized, err := SanitizeFilename(originalName)
	if err != nil {
		return "", err
	}
	storedName := StoredName(s.now(), sanitized)

	tmp, err := os.CreateTemp(s.rootPath, tempPrefix+"*")
	if err != nil {
		return "", internal_errors.NewStorageFault("failed to create temporary file", err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", internal_errors.NewStorageFault("failed to write media file", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(s.rootPath, storedName)); err != nil {
		os.Remove(tmpPath)
		return "", internal_errors.NewStorageFault("failed to move media file into place", err)
	}

	mediaFilesStored.Inc()
	mediaBytesStored.Add(float64(written))
	return storedName, nil
}

// path maps a stored name to its absolute location, refusing anything that is not a
// plain leaf inside the root.
func (s *Storage) path(storedName string) (string, bool) {
	if storedName == "" || storedName == "." || storedName == ".." ||
		strings.ContainsAny(storedName, `/\`+"\x00") || strings.HasPrefix(storedName, tempPrefix) {
		return "", false
	}
	full := filepath.Join(s.rootPath, storedName)
	rel, err := filepath.Rel(s.rootPath, full)
	if err != nil || rel != storedName {
		return "", false
	}
	return full, true
}

// Resolve opens a stored file for reading and determines its MIME type.
func (s *Storage) Resolve(storedName string) (*domain.MediaFile, error) {
	fullPath, ok := s.path(storedName)
	if !ok {
		return nil, internal_errors.NewNotFound("file not found: %s", storedName)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, internal_errors.NewNotFound("file not found: %s", storedName)
		}
		return nil, internal_errors.NewStorageFault("failed to open media file", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, internal_errors.NewStorageFault("failed to stat media file", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, internal_errors.NewNotFound("file not found: %s", storedName)
	}

	mimeType, err := detectMimeType(file, storedName)
	if err != nil {
		file.Close()
		return nil, internal_errors.NewStorageFault("failed to read media file", err)
	}

	return &domain.MediaFile{
		Name:     storedName,
		MimeType: mimeType,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Content:  file,
	}, nil
}

// detectMimeType prefers the extension and falls back to content sniffing. The reader is
// rewound before returning.
func detectMimeType(file io.ReadSeeker, name string) (string, error) {
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return byExt, nil
	}

	detected, err := mimetype.DetectReader(file)
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return "", seekErr
	}
	if err != nil || detected == nil {
		return defaultMimeType, nil
	}
	return detected.String(), nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *Storage) Remove(storedName string) error {
	fullPath, ok := s.path(storedName)
	if !ok {
		return internal_errors.NewInvalidInput("invalid media name %q", storedName)
	}

	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		mediaRemoveFailures.Inc()
		return internal_errors.NewStorageFault(fmt.Sprintf("failed to delete media file %s", storedName), err)
	}
	mediaFilesRemoved.Inc()
	return nil
}

// WalkFiles lists the stored names currently in the root. Temporary upload files and
// directories are skipped.
func (s *Storage) WalkFiles() ([]string, error) {
	entries, err := os.ReadDir(s.rootPath)
	if err != nil {
		return nil, internal_errors.NewStorageFault("failed to list media directory", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (s *Storage) GetFileModTime(storedName string) (time.Time, error) {
	fullPath, ok := s.path(storedName)
	if !ok {
		return time.Time{}, internal_errors.NewInvalidInput("invalid media name %q", storedName)
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
