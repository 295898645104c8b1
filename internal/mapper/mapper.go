// Package mapper converts between domain models and transport DTOs.
package mapper

import (
	"strings"

	"github.com/jacobboykin/kots/internal/entities"
	"github.com/jacobboykin/kots/internal/payload"
)

// FromPayloadPullRequestEvent builds a validated entities.PullRequestEvent
// from the webhook DTO. Callers validate the DTO first.
func FromPayloadPullRequestEvent(src payload.PullRequestEvent) entities.PullRequestEvent {
	return entities.PullRequestEvent{
		Action:    src.Action,
		Number:    src.PullRequest.Number,
		Merged:    src.PullRequest.Merged,
		MergedAt:  src.PullRequest.MergedAt,
		RepoOwner: src.PullRequest.Base.Repo.Owner.Login,
		RepoName:  src.PullRequest.Base.Repo.Name,
	}
}

// FromPayloadInstallationEvent builds an entities.InstallationEvent from
// the webhook DTO.
func FromPayloadInstallationEvent(src payload.InstallationEvent) entities.InstallationEvent {
	ev := entities.InstallationEvent{
		Action:         src.Action,
		InstallationID: src.Installation.ID,
		AccountKind:    entities.AccountKindUser,
	}
	if src.Installation.Account != nil {
		ev.AccountLogin = src.Installation.Account.Login
		if strings.EqualFold(src.Installation.Account.Type, "organization") {
			ev.AccountKind = entities.AccountKindOrganization
		}
	}
	if src.Sender != nil {
		ev.InstallerLogin = src.Sender.Login
	}
	return ev
}

// FromPayloadCluster builds an entities.Cluster from a create request.
func FromPayloadCluster(src payload.CreateClusterRequest) entities.Cluster {
	c := entities.Cluster{
		ID:   src.ClusterID,
		Name: src.Name,
	}
	if src.GitOps != nil {
		c.GitOps = &entities.GitOpsRef{
			InstallationID: src.GitOps.InstallationID,
			Owner:          src.GitOps.Owner,
			Repo:           src.GitOps.Repo,
		}
	}
	return c
}

// ToPayloadCluster maps entities.Cluster to transport model.
func ToPayloadCluster(c entities.Cluster) payload.Cluster {
	res := payload.Cluster{
		ClusterID: c.ID,
		Name:      c.Name,
	}
	if c.GitOps != nil {
		res.GitOps = &payload.GitOpsRef{
			InstallationID: c.GitOps.InstallationID,
			Owner:          c.GitOps.Owner,
			Repo:           c.GitOps.Repo,
		}
	}
	return res
}

// FromPayloadWatch builds an entities.Watch from a create request.
func FromPayloadWatch(src payload.CreateWatchRequest) entities.Watch {
	return entities.Watch{
		ID:        src.WatchID,
		ClusterID: src.ClusterID,
		Name:      src.Name,
	}
}

// ToPayloadWatch maps entities.Watch to transport model.
func ToPayloadWatch(w entities.Watch) payload.Watch {
	return payload.Watch{
		WatchID:         w.ID,
		ClusterID:       w.ClusterID,
		Name:            w.Name,
		CurrentSequence: w.CurrentSequence,
		CurrentMergedAt: w.CurrentMergedAt,
	}
}

// ToPayloadWatchDetail maps entities.WatchDetail to transport model.
func ToPayloadWatchDetail(d entities.WatchDetail) payload.WatchDetail {
	return payload.WatchDetail{
		Watch:           ToPayloadWatch(d.Watch),
		PendingVersions: ToPayloadVersionList(d.PendingVersions),
		PastVersions:    ToPayloadVersionList(d.PastVersions),
	}
}

// ToPayloadVersion maps entities.Version to transport model.
func ToPayloadVersion(v entities.Version) payload.Version {
	return payload.Version{
		Sequence:          v.Sequence,
		Status:            string(v.Status),
		CommitSHA:         v.CommitSHA,
		PullRequestNumber: v.PullRequestNumber,
		MergedAt:          v.MergedAt,
		CreatedAt:         v.CreatedAt,
	}
}

// ToPayloadVersionList maps a slice of entities.Version to transport slice.
func ToPayloadVersionList(list []entities.Version) []payload.Version {
	res := make([]payload.Version, 0, len(list))
	for _, v := range list {
		res = append(res, ToPayloadVersion(v))
	}
	return res
}
