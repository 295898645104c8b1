// Package entities contains core business entities.
package entities

import "time"

// VersionStatus enumerates deployment version lifecycle states.
type VersionStatus string

const (
	// StatusPending marks a version awaiting source-control activity.
	StatusPending VersionStatus = "pending"
	// StatusOpened marks a version whose pull request was opened.
	StatusOpened VersionStatus = "opened"
	// StatusClosed marks a version whose pull request was closed unmerged.
	StatusClosed VersionStatus = "closed"
	// StatusReopened marks a version whose pull request was reopened.
	StatusReopened VersionStatus = "reopened"
	// StatusMerged marks a version whose pull request was merged.
	StatusMerged VersionStatus = "merged"
)

// Terminal reports whether the status ends the pending phase of a version.
func (s VersionStatus) Terminal() bool {
	return s == StatusClosed || s == StatusMerged
}

// Version is one deployment attempt within a watch. Sequence is assigned
// per watch when the version is proposed. CommitSHA is empty for versions
// created before commit tracking existed; those correlate to pull
// requests by number only.
type Version struct {
	WatchID           string
	Sequence          int64
	Status            VersionStatus
	CommitSHA         string
	PullRequestNumber *int
	MergedAt          *time.Time
	CreatedAt         *time.Time
}
