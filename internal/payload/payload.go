// Package payload contains transport DTOs: incoming GitHub webhook
// bodies and the management API request/response shapes.
package payload

import (
	"errors"
	"time"
)

// Webhook event type header values the endpoint recognizes.
const (
	EventPullRequest              = "pull_request"
	EventInstallation             = "installation"
	EventInstallationRepositories = "installation_repositories"
	EventIntegrationInstallation  = "integration_installation"
	EventIntegrationInstallationRepositories = "integration_installation_repositories"
)

// PullRequestEvent mirrors the fields of the pull_request webhook body
// the dispatcher needs. The body is validated, never trusted on the
// event-type header alone.
type PullRequestEvent struct {
	Action      string       `json:"action"`
	PullRequest *PullRequest `json:"pull_request"`
}

// Validate checks the fields dispatch depends on.
func (e PullRequestEvent) Validate() error {
	if e.Action == "" {
		return errors.New("action is required")
	}
	if e.PullRequest == nil {
		return errors.New("pull_request is required")
	}
	if e.PullRequest.Number == 0 {
		return errors.New("pull_request.number is required")
	}
	if e.PullRequest.Base == nil || e.PullRequest.Base.Repo == nil || e.PullRequest.Base.Repo.Owner == nil {
		return errors.New("pull_request.base.repo is required")
	}
	if e.PullRequest.Base.Repo.Name == "" || e.PullRequest.Base.Repo.Owner.Login == "" {
		return errors.New("pull_request.base.repo owner and name are required")
	}
	return nil
}

// PullRequest is the webhook's pull request object.
type PullRequest struct {
	Number   int        `json:"number"`
	Merged   bool       `json:"merged"`
	MergedAt *time.Time `json:"merged_at"`
	Base     *Base      `json:"base"`
}

// Base is the pull request's base branch reference.
type Base struct {
	Repo *Repo `json:"repo"`
}

// Repo identifies a repository.
type Repo struct {
	Name  string `json:"name"`
	Owner *Owner `json:"owner"`
}

// Owner identifies a repository owner.
type Owner struct {
	Login string `json:"login"`
}

// InstallationEvent mirrors the installation webhook body.
type InstallationEvent struct {
	Action       string        `json:"action"`
	Installation *Installation `json:"installation"`
	Sender       *Sender       `json:"sender"`
}

// Validate checks the fields dispatch depends on.
func (e InstallationEvent) Validate() error {
	if e.Action == "" {
		return errors.New("action is required")
	}
	if e.Installation == nil || e.Installation.ID == 0 {
		return errors.New("installation.id is required")
	}
	if e.Action == "created" && (e.Installation.Account == nil || e.Installation.Account.Login == "") {
		return errors.New("installation.account is required")
	}
	return nil
}

// Installation is the webhook's installation object.
type Installation struct {
	ID      int64    `json:"id"`
	Account *Account `json:"account"`
}

// Account is the installation's target account.
type Account struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}

// Sender is the user who triggered the event.
type Sender struct {
	Login string `json:"login"`
}

// CreateClusterRequest registers a deployment target.
type CreateClusterRequest struct {
	ClusterID string     `json:"cluster_id"`
	Name      string     `json:"name"`
	GitOps    *GitOpsRef `json:"gitops,omitempty"`
}

// GitOpsRef binds a cluster to an installation and repository.
type GitOpsRef struct {
	InstallationID int64  `json:"installation_id"`
	Owner          string `json:"owner"`
	Repo           string `json:"repo"`
}

// Cluster is the management API cluster representation.
type Cluster struct {
	ClusterID string     `json:"cluster_id"`
	Name      string     `json:"name"`
	GitOps    *GitOpsRef `json:"gitops,omitempty"`
}

// CreateWatchRequest registers a tracked application instance.
type CreateWatchRequest struct {
	WatchID   string `json:"watch_id"`
	ClusterID string `json:"cluster_id"`
	Name      string `json:"name"`
}

// ProposeVersionRequest records a new pending deployment version.
type ProposeVersionRequest struct {
	CommitSHA         string `json:"commit_sha,omitempty"`
	PullRequestNumber *int   `json:"pull_request_number,omitempty"`
}

// Watch is the management API watch representation.
type Watch struct {
	WatchID         string     `json:"watch_id"`
	ClusterID       string     `json:"cluster_id"`
	Name            string     `json:"name"`
	CurrentSequence *int64     `json:"current_sequence,omitempty"`
	CurrentMergedAt *time.Time `json:"current_merged_at,omitempty"`
}

// WatchDetail is a watch with its version partitions.
type WatchDetail struct {
	Watch
	PendingVersions []Version `json:"pending_versions"`
	PastVersions    []Version `json:"past_versions"`
}

// Version is the management API version representation.
type Version struct {
	Sequence          int64      `json:"sequence"`
	Status            string     `json:"status"`
	CommitSHA         string     `json:"commit_sha,omitempty"`
	PullRequestNumber *int       `json:"pull_request_number,omitempty"`
	MergedAt          *time.Time `json:"merged_at,omitempty"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
}

// ErrorCode enumerates machine-readable error codes.
type ErrorCode string

// Error codes returned by the management API.
const (
	CodeInvalid  ErrorCode = "INVALID_ARGUMENT"
	CodeNotFound ErrorCode = "NOT_FOUND"
	CodeConflict ErrorCode = "CONFLICT"
	CodeInternal ErrorCode = "INTERNAL"
)

// ErrorResponse is the error envelope for the management API.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the code and message of an error response.
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}
