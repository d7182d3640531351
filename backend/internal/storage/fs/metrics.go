package fs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mediaFilesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_files_stored_total",
		Help: "Total number of media files written to the media directory",
	})

	mediaBytesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_bytes_stored_total",
		Help: "Total number of bytes written to the media directory",
	})

	mediaFilesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_files_removed_total",
		Help: "Total number of media files deleted from the media directory",
	})

	mediaRemoveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_remove_failures_total",
		Help: "Total number of media deletions that failed with an I/O error",
	})
)
