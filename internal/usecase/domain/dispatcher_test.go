package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jacobboykin/kots/internal/entities"
	"github.com/jacobboykin/kots/internal/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type repoMock struct{ mock.Mock }

var _ repository.Repository = (*repoMock)(nil)

func (m *repoMock) OnStart(_ context.Context) error { return nil }
func (m *repoMock) OnStop(_ context.Context) error  { return nil }

func (m *repoMock) CreateCluster(ctx context.Context, cluster entities.Cluster) (*entities.Cluster, error) {
	args := m.Called(ctx, cluster)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Cluster), args.Error(1)
}

func (m *repoMock) ListClustersForRepo(ctx context.Context, owner, repo string) ([]entities.Cluster, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Cluster), args.Error(1)
}

func (m *repoMock) CreateWatch(ctx context.Context, watch entities.Watch) (*entities.Watch, error) {
	args := m.Called(ctx, watch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Watch), args.Error(1)
}

func (m *repoMock) GetWatch(ctx context.Context, watchID string) (*entities.Watch, error) {
	args := m.Called(ctx, watchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Watch), args.Error(1)
}

func (m *repoMock) ListWatchesForCluster(ctx context.Context, clusterID string) ([]entities.Watch, error) {
	args := m.Called(ctx, clusterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Watch), args.Error(1)
}

func (m *repoMock) SetCurrentVersion(ctx context.Context, watchID string, sequence int64, mergedAt *time.Time) error {
	args := m.Called(ctx, watchID, sequence, mergedAt)
	return args.Error(0)
}

func (m *repoMock) CreateVersion(ctx context.Context, watchID, commitSHA string, pullRequestNumber *int) (*entities.Version, error) {
	args := m.Called(ctx, watchID, commitSHA, pullRequestNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Version), args.Error(1)
}

func (m *repoMock) ListPendingVersions(ctx context.Context, watchID string) ([]entities.Version, error) {
	args := m.Called(ctx, watchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Version), args.Error(1)
}

func (m *repoMock) ListPastVersions(ctx context.Context, watchID string) ([]entities.Version, error) {
	args := m.Called(ctx, watchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Version), args.Error(1)
}

func (m *repoMock) GetVersionForCommit(ctx context.Context, watchID, commitSHA string) (*entities.Version, error) {
	args := m.Called(ctx, watchID, commitSHA)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Version), args.Error(1)
}

func (m *repoMock) UpdateVersionStatus(ctx context.Context, watchID string, sequence int64, status entities.VersionStatus, mergedAt *time.Time) error {
	args := m.Called(ctx, watchID, sequence, status, mergedAt)
	return args.Error(0)
}

func (m *repoMock) CreateInstallation(ctx context.Context, inst entities.Installation) (*entities.Installation, error) {
	args := m.Called(ctx, inst)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Installation), args.Error(1)
}

func (m *repoMock) DeleteInstallation(ctx context.Context, installationID int64) error {
	args := m.Called(ctx, installationID)
	return args.Error(0)
}

type scmMock struct{ mock.Mock }

var _ SourceControl = (*scmMock)(nil)

func (m *scmMock) InstallationToken(ctx context.Context, installationID int64) (string, time.Time, error) {
	args := m.Called(ctx, installationID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *scmMock) ListPullRequestCommits(ctx context.Context, token, owner, repo string, number int) ([]string, error) {
	args := m.Called(ctx, token, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *scmMock) OrgMembersCount(ctx context.Context, token, org string) (int, error) {
	args := m.Called(ctx, token, org)
	return args.Int(0), args.Error(1)
}

func newTestUsecase(repo *repoMock, github *scmMock) *Usecase {
	return New(zap.NewNop().Sugar(), context.Background(), repo, github, time.Second)
}

func seqPtr(s int64) *int64 { return &s }
func numPtr(n int) *int     { return &n }

func gitopsCluster(id string, installationID int64) entities.Cluster {
	return entities.Cluster{
		ID:   id,
		Name: id,
		GitOps: &entities.GitOpsRef{
			InstallationID: installationID,
			Owner:          "acme",
			Repo:           "shop",
		},
	}
}

func prEvent(action string, merged bool) entities.PullRequestEvent {
	return entities.PullRequestEvent{
		Action:    action,
		Number:    12,
		Merged:    merged,
		RepoOwner: "acme",
		RepoName:  "shop",
	}
}

func TestHandlePullRequestEventIgnoresUnknownAction(t *testing.T) {
	repo := &repoMock{}
	github := &scmMock{}
	uc := newTestUsecase(repo, github)

	err := uc.HandlePullRequestEvent(context.Background(), prEvent("synchronize", false))
	require.NoError(t, err)
	repo.AssertNotCalled(t, "ListClustersForRepo", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlePullRequestEventMergedCommitAdvancesCurrent(t *testing.T) {
	repo := &repoMock{}
	github := &scmMock{}
	uc := newTestUsecase(repo, github)

	watch := entities.Watch{ID: "w1", ClusterID: "c1", Name: "shop"}
	version := entities.Version{WatchID: "w1", Sequence: 5, Status: entities.StatusPending, CommitSHA: "abc"}

	repo.On("ListClustersForRepo", mock.Anything, "acme", "shop").
		Return([]entities.Cluster{gitopsCluster("c1", 77)}, nil)
	repo.On("ListWatchesForCluster", mock.Anything, "c1").Return([]entities.Watch{watch}, nil)
	repo.On("ListPendingVersions", mock.Anything, "w1").Return([]entities.Version{version}, nil)
	repo.On("ListPastVersions", mock.Anything, "w1").Return([]entities.Version{}, nil)
	github.On("InstallationToken", mock.Anything, int64(77)).Return("tok", time.Now(), nil)
	github.On("ListPullRequestCommits", mock.Anything, "tok", "acme", "shop", 12).Return([]string{"abc"}, nil)
	repo.On("GetVersionForCommit", mock.Anything, "w1", "abc").Return(&version, nil)
	repo.On("UpdateVersionStatus", mock.Anything, "w1", int64(5), entities.StatusMerged, mock.Anything).Return(nil)
	repo.On("SetCurrentVersion", mock.Anything, "w1", int64(5), mock.Anything).Return(nil)

	err := uc.HandlePullRequestEvent(context.Background(), prEvent("closed", true))
	require.NoError(t, err)
	repo.AssertExpectations(t)
	github.AssertExpectations(t)
}

func TestHandlePullRequestEventStaleMergeKeepsCurrent(t *testing.T) {
	repo := &repoMock{}
	github := &scmMock{}
	uc := newTestUsecase(repo, github)

	watch := entities.Watch{ID: "w1", ClusterID: "c1", Name: "shop", CurrentSequence: seqPtr(7)}
	stale := entities.Version{WatchID: "w1", Sequence: 5, Status: entities.StatusPending, CommitSHA: "abc"}

	repo.On("ListClustersForRepo", mock.Anything, "acme", "shop").
		Return([]entities.Cluster{gitopsCluster("c1", 77)}, nil)
	repo.On("ListWatchesForCluster", mock.Anything, "c1").Return([]entities.Watch{watch}, nil)
	repo.On("ListPendingVersions", mock.Anything, "w1").Return([]entities.Version{stale}, nil)
	repo.On("ListPastVersions", mock.Anything, "w1").Return([]entities.Version{}, nil)
	github.On("InstallationToken", mock.Anything, int64(77)).Return("tok", time.Now(), nil)
	github.On("ListPullRequestCommits", mock.Anything, "tok", "acme", "shop", 12).
		Return([]string{"abc", "def"}, nil)
	repo.On("GetVersionForCommit", mock.Anything, "w1", "abc").Return(&stale, nil)
	repo.On("UpdateVersionStatus", mock.Anything, "w1", int64(5), entities.StatusMerged, mock.Anything).Return(nil)

	err := uc.HandlePullRequestEvent(context.Background(), prEvent("closed", true))
	require.NoError(t, err)

	// Status written, pointer untouched, and the second commit never
	// looked up: the scan stops at the regression.
	repo.AssertNotCalled(t, "SetCurrentVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "GetVersionForCommit", mock.Anything, "w1", "def")
	repo.AssertExpectations(t)
}

func TestHandlePullRequestEventLegacyMatch(t *testing.T) {
	repo := &repoMock{}
	github := &scmMock{}
	uc := newTestUsecase(repo, github)

	// No GitOps binding on the cluster: only the legacy pass runs.
	cluster := entities.Cluster{ID: "c1", Name: "c1"}
	watch := entities.Watch{ID: "w1", ClusterID: "c1", Name: "shop"}
	legacy := entities.Version{WatchID: "w1", Sequence: 2, Status: entities.StatusPending, PullRequestNumber: numPtr(12)}

	repo.On("ListClustersForRepo", mock.Anything, "acme", "shop").Return([]entities.Cluster{cluster}, nil)
	repo.On("ListWatchesForCluster", mock.Anything, "c1").Return([]entities.Watch{watch}, nil)
	repo.On("ListPendingVersions", mock.Anything, "w1").Return([]entities.Version{legacy}, nil)
	repo.On("ListPastVersions", mock.Anything, "w1").Return([]entities.Version{}, nil)
	repo.On("UpdateVersionStatus", mock.Anything, "w1", int64(2), entities.StatusOpened, (*time.Time)(nil)).Return(nil)

	err := uc.HandlePullRequestEvent(context.Background(), prEvent("opened", false))
	require.NoError(t, err)
	repo.AssertNotCalled(t, "SetCurrentVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	github.AssertNotCalled(t, "InstallationToken", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestHandlePullRequestEventLegacySkipsCommitTrackedVersion(t *testing.T) {
	repo := &repoMock{}
	github := &scmMock{}
	uc := newTestUsecase(repo, github)

	cluster := entities.Cluster{ID: "c1", Name: "c1"}
	watch := entities.Watch{ID: "w1", ClusterID: "c1", Name: "shop"}
	// Same PR number, but the version carries a commit SHA: the commit
	// path owns it and legacy matching must not touch it.
	tracked := entities.Version{WatchID: "w1", Sequence: 3, Status: entities.StatusPending, CommitSHA: "abc", PullRequestNumber: numPtr(12)}

	repo.On("ListClustersForRepo", mock.Anything, "acme", "shop").Return([]entities.Cluster{cluster}, nil)
	repo.On("ListWatchesForCluster", mock.Anything, "c1").Return([]entities.Watch{watch}, nil)
	repo.On("ListPendingVersions", mock.Anything, "w1").Return([]entities.Version{tracked}, nil)
	repo.On("ListPastVersions", mock.Anything, "w1").Return([]entities.Version{}, nil)

	err := uc.HandlePullRequestEvent(context.Background(), prEvent("opened", false))
	require.NoError(t, err)
	repo.AssertNotCalled(t, "UpdateVersionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlePullRequestEventClusterFailureIsolated(t *testing.T) {
	repo := &repoMock{}
	github := &scmMock{}
	uc := newTestUsecase(repo, github)

	watch := entities.Watch{ID: "w2", ClusterID: "c2", Name: "shop"}
	version := entities.Version{WatchID: "w2", Sequence: 1, Status: entities.StatusPending, CommitSHA: "abc"}

	repo.On("ListClustersForRepo", mock.Anything, "acme", "shop").
		Return([]entities.Cluster{gitopsCluster("c1", 70), gitopsCluster("c2", 71)}, nil)
	repo.On("ListWatchesForCluster", mock.Anything, "c1").Return([]entities.Watch{}, nil)
	repo.On("ListWatchesForCluster", mock.Anything, "c2").Return([]entities.Watch{watch}, nil)
	repo.On("ListPendingVersions", mock.Anything, mock.Anything).Return([]entities.Version{}, nil)
	repo.On("ListPastVersions", mock.Anything, mock.Anything).Return([]entities.Version{}, nil)

	// Token issue fails for the first cluster; the second proceeds.
	github.On("InstallationToken", mock.Anything, int64(70)).
		Return("", time.Time{}, errors.New("token exchange failed"))
	github.On("InstallationToken", mock.Anything, int64(71)).Return("tok", time.Now(), nil)
	github.On("ListPullRequestCommits", mock.Anything, "tok", "acme", "shop", 12).Return([]string{"abc"}, nil)
	repo.On("GetVersionForCommit", mock.Anything, "w2", "abc").Return(&version, nil)
	repo.On("UpdateVersionStatus", mock.Anything, "w2", int64(1), entities.StatusMerged, mock.Anything).Return(nil)
	repo.On("SetCurrentVersion", mock.Anything, "w2", int64(1), mock.Anything).Return(nil)

	err := uc.HandlePullRequestEvent(context.Background(), prEvent("closed", true))
	require.NoError(t, err)
	repo.AssertExpectations(t)
	github.AssertExpectations(t)
}

func TestHandlePullRequestEventUntrackedCommitsSkipped(t *testing.T) {
	repo := &repoMock{}
	github := &scmMock{}
	uc := newTestUsecase(repo, github)

	watch := entities.Watch{ID: "w1", ClusterID: "c1", Name: "shop"}
	version := entities.Version{WatchID: "w1", Sequence: 4, Status: entities.StatusPending, CommitSHA: "bbb"}

	repo.On("ListClustersForRepo", mock.Anything, "acme", "shop").
		Return([]entities.Cluster{gitopsCluster("c1", 77)}, nil)
	repo.On("ListWatchesForCluster", mock.Anything, "c1").Return([]entities.Watch{watch}, nil)
	repo.On("ListPendingVersions", mock.Anything, "w1").Return([]entities.Version{}, nil)
	repo.On("ListPastVersions", mock.Anything, "w1").Return([]entities.Version{}, nil)
	github.On("InstallationToken", mock.Anything, int64(77)).Return("tok", time.Now(), nil)
	github.On("ListPullRequestCommits", mock.Anything, "tok", "acme", "shop", 12).
		Return([]string{"aaa", "bbb"}, nil)
	repo.On("GetVersionForCommit", mock.Anything, "w1", "aaa").Return(nil, entities.ErrVersionNotFound)
	repo.On("GetVersionForCommit", mock.Anything, "w1", "bbb").Return(&version, nil)
	repo.On("UpdateVersionStatus", mock.Anything, "w1", int64(4), entities.StatusReopened, (*time.Time)(nil)).Return(nil)

	err := uc.HandlePullRequestEvent(context.Background(), prEvent("reopened", false))
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHandlePullRequestEventNoClusters(t *testing.T) {
	repo := &repoMock{}
	github := &scmMock{}
	uc := newTestUsecase(repo, github)

	repo.On("ListClustersForRepo", mock.Anything, "acme", "shop").Return([]entities.Cluster{}, nil)

	err := uc.HandlePullRequestEvent(context.Background(), prEvent("opened", false))
	require.NoError(t, err)
	repo.AssertNotCalled(t, "ListWatchesForCluster", mock.Anything, mock.Anything)
}
