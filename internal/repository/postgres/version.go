package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jacobboykin/kots/internal/entities"

	"github.com/jackc/pgx/v5"
)

const (
	selectWatchForUpdateQuery = `SELECT id FROM watches WHERE id=$1 FOR UPDATE`
	nextSequenceQuery         = `SELECT COALESCE(MAX(sequence), 0) + 1 FROM versions WHERE watch_id=$1`
	insertVersionQuery        = `INSERT INTO versions(watch_id, sequence, status, commit_sha, pull_request_number)
		VALUES ($1,$2,'pending',$3,$4) RETURNING created_at`
	selectPendingVersionsQuery = `SELECT watch_id, sequence, status, commit_sha, pull_request_number, merged_at, created_at
		FROM versions WHERE watch_id=$1 AND status IN ('pending','opened','reopened') ORDER BY sequence`
	selectPastVersionsQuery = `SELECT watch_id, sequence, status, commit_sha, pull_request_number, merged_at, created_at
		FROM versions WHERE watch_id=$1 AND status IN ('closed','merged') ORDER BY sequence`
	selectVersionForCommitQuery = `SELECT watch_id, sequence, status, commit_sha, pull_request_number, merged_at, created_at
		FROM versions WHERE watch_id=$1 AND commit_sha=$2 AND status IN ('pending','opened','reopened')`
	updateVersionStatusQuery = `UPDATE versions SET status=$3, merged_at=COALESCE($4, merged_at)
		WHERE watch_id=$1 AND sequence=$2`
)

// CreateVersion proposes a new deployment version for a watch. The next
// sequence is assigned under a watch row lock so concurrent proposals
// never collide.
func (p *Postgres) CreateVersion(ctx context.Context, watchID, commitSHA string, pullRequestNumber *int) (res *entities.Version, err error) {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var lockedID string
	if err := tx.QueryRow(ctx, selectWatchForUpdateQuery, watchID).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrWatchNotFound
		}
		p.log.Errorw("failed to lock watch", "error", err, "watch_id", watchID)
		return nil, fmt.Errorf("lock watch: %w", err)
	}

	var sequence int64
	if err := tx.QueryRow(ctx, nextSequenceQuery, watchID).Scan(&sequence); err != nil {
		p.log.Errorw("failed to assign sequence", "error", err, "watch_id", watchID)
		return nil, fmt.Errorf("next sequence: %w", err)
	}

	var sha *string
	if commitSHA != "" {
		sha = &commitSHA
	}

	var createdAt time.Time
	if err := tx.QueryRow(ctx, insertVersionQuery, watchID, sequence, sha, pullRequestNumber).Scan(&createdAt); err != nil {
		p.log.Errorw("failed to insert version", "error", err, "watch_id", watchID, "sequence", sequence)
		return nil, fmt.Errorf("insert version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	p.log.Infow("version proposed", "watch_id", watchID, "sequence", sequence, "commit_sha", commitSHA)
	return &entities.Version{
		WatchID:           watchID,
		Sequence:          sequence,
		Status:            entities.StatusPending,
		CommitSHA:         commitSHA,
		PullRequestNumber: pullRequestNumber,
		CreatedAt:         &createdAt,
	}, nil
}

// ListPendingVersions returns versions that have not reached a terminal status.
func (p *Postgres) ListPendingVersions(ctx context.Context, watchID string) ([]entities.Version, error) {
	return p.listVersions(ctx, selectPendingVersionsQuery, watchID)
}

// ListPastVersions returns versions with a terminal status.
func (p *Postgres) ListPastVersions(ctx context.Context, watchID string) ([]entities.Version, error) {
	return p.listVersions(ctx, selectPastVersionsQuery, watchID)
}

// GetVersionForCommit returns the pending version tracking a commit.
func (p *Postgres) GetVersionForCommit(ctx context.Context, watchID, commitSHA string) (*entities.Version, error) {
	row := p.db.QueryRow(ctx, selectVersionForCommitQuery, watchID, commitSHA)
	v, err := scanVersion(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrVersionNotFound
		}
		p.log.Errorw("failed to select version for commit", "error", err, "watch_id", watchID, "commit_sha", commitSHA)
		return nil, fmt.Errorf("get version for commit: %w", err)
	}
	return v, nil
}

// UpdateVersionStatus writes a status to a version record. Re-applying
// an identical status is a no-op write, never an error.
func (p *Postgres) UpdateVersionStatus(ctx context.Context, watchID string, sequence int64, status entities.VersionStatus, mergedAt *time.Time) error {
	tag, err := p.db.Exec(ctx, updateVersionStatusQuery, watchID, sequence, status, mergedAt)
	if err != nil {
		p.log.Errorw("failed to update version status", "error", err, "watch_id", watchID, "sequence", sequence)
		return fmt.Errorf("update version status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrVersionNotFound
	}
	return nil
}

func (p *Postgres) listVersions(ctx context.Context, query, watchID string) ([]entities.Version, error) {
	rows, err := p.db.Query(ctx, query, watchID)
	if err != nil {
		p.log.Errorw("failed to select versions", "error", err, "watch_id", watchID)
		return nil, fmt.Errorf("select versions: %w", err)
	}
	defer rows.Close()

	versions := make([]entities.Version, 0)
	for rows.Next() {
		v, err := scanVersion(rows.Scan)
		if err != nil {
			p.log.Errorw("failed to scan version", "error", err)
			return nil, err
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		p.log.Errorw("error iterating versions", "error", err)
		return nil, err
	}
	return versions, nil
}

func scanVersion(scan func(dest ...any) error) (*entities.Version, error) {
	var v entities.Version
	var sha *string
	var createdAt time.Time
	if err := scan(&v.WatchID, &v.Sequence, &v.Status, &sha, &v.PullRequestNumber, &v.MergedAt, &createdAt); err != nil {
		return nil, err
	}
	if sha != nil {
		v.CommitSHA = *sha
	}
	v.CreatedAt = &createdAt
	return &v, nil
}
