// Package entities contains core business entities.
package entities

// GitOpsRef binds a cluster to a source-control app installation and the
// repository that owns its deployment pull requests.
type GitOpsRef struct {
	InstallationID int64
	Owner          string
	Repo           string
}

// Cluster is a deployment target with zero or one GitOps integration.
type Cluster struct {
	ID     string
	Name   string
	GitOps *GitOpsRef
}
