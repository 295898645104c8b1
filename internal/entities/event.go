// Package entities contains core business entities.
package entities

import "time"

// Pull request actions the dispatcher reconciles; every other action is
// ignored. Merged is a modifier on closed, not a standalone action.
const (
	ActionOpened   = "opened"
	ActionClosed   = "closed"
	ActionReopened = "reopened"
)

// Installation actions the dispatcher records.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// PullRequestEvent is a validated pull_request webhook delivery.
type PullRequestEvent struct {
	Action    string
	Number    int
	Merged    bool
	MergedAt  *time.Time
	RepoOwner string
	RepoName  string
}

// InstallationEvent is a validated installation webhook delivery.
type InstallationEvent struct {
	Action         string
	InstallationID int64
	AccountLogin   string
	AccountKind    AccountKind
	InstallerLogin string
}
