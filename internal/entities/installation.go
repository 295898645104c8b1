// Package entities contains core business entities.
package entities

import "time"

// AccountKind distinguishes user and organization installations.
type AccountKind string

const (
	// AccountKindUser marks an installation on a personal account.
	AccountKindUser AccountKind = "user"
	// AccountKindOrganization marks an installation on an organization.
	AccountKindOrganization AccountKind = "organization"
)

// Installation is a recorded app installation on the source-control
// platform. Created on the add event, deleted on the remove event, never
// mutated in place.
type Installation struct {
	ID             int64
	AccountLogin   string
	AccountKind    AccountKind
	MemberCount    int
	InstallerLogin string
	InstalledAt    *time.Time
}
