// Package entities contains core business entities.
package entities

import "time"

// Watch is a tracked application instance belonging to a cluster.
// CurrentSequence points at the actively deployed version and is
// non-decreasing over the watch's lifetime.
type Watch struct {
	ID              string
	ClusterID       string
	Name            string
	CurrentSequence *int64
	CurrentMergedAt *time.Time
}

// WatchDetail is a watch together with its version partitions.
type WatchDetail struct {
	Watch
	PendingVersions []Version
	PastVersions    []Version
}
