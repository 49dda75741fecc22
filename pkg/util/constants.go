package util

import "time"

const (
	// DefaultTimeout bounds every individual cluster API call.
	DefaultTimeout = 30 * time.Second

	// TopPodLimit is how many pods the resource usage ranking shows.
	TopPodLimit = 10

	// MaxListedIssues caps each pod list in cluster diagnostics.
	MaxListedIssues = 10

	// HighRestartThreshold is the restart count above which a container is flagged.
	HighRestartThreshold = 5

	// MaxMissingEndpoints caps the services-without-endpoints list.
	MaxMissingEndpoints = 20

	// DefaultWorkers is the default size of the fetch worker pool.
	DefaultWorkers = 8
)

// Status markers used across reports.
const (
	Pass = "✓"
	Fail = "✗"
	Warn = "⚠"
	Part = "~"
)
