package domain

import (
	"context"

	"github.com/jacobboykin/kots/internal/entities"
)

// HandleInstallationEvent records or removes an app installation. No
// ordering concerns here; the member count lookup degrades to zero when
// the API call fails.
func (u *Usecase) HandleInstallationEvent(ctx context.Context, ev entities.InstallationEvent) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	switch ev.Action {
	case entities.ActionCreated:
		members := 0
		if ev.AccountKind == entities.AccountKindOrganization {
			members = u.orgMemberCount(ctx, ev.InstallationID, ev.AccountLogin)
		}
		_, err := u.repo.CreateInstallation(ctx, entities.Installation{
			ID:             ev.InstallationID,
			AccountLogin:   ev.AccountLogin,
			AccountKind:    ev.AccountKind,
			MemberCount:    members,
			InstallerLogin: ev.InstallerLogin,
		})
		return err
	case entities.ActionDeleted:
		return u.repo.DeleteInstallation(ctx, ev.InstallationID)
	default:
		u.log.Debugw("ignoring installation action", "action", ev.Action)
		return nil
	}
}

func (u *Usecase) orgMemberCount(ctx context.Context, installationID int64, org string) int {
	token, _, err := u.scm.InstallationToken(ctx, installationID)
	if err != nil {
		u.log.Warnw("failed to issue installation token", "installation_id", installationID, "error", err)
		return 0
	}
	count, err := u.scm.OrgMembersCount(ctx, token, org)
	if err != nil {
		u.log.Warnw("failed to count organization members", "org", org, "error", err)
		return 0
	}
	return count
}
