package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jacobboykin/kots/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	insertWatchQuery = `INSERT INTO watches(id, cluster_id, name) VALUES ($1,$2,$3)`
	selectWatchQuery = `SELECT id, cluster_id, name, current_sequence, current_merged_at
		FROM watches WHERE id=$1`
	selectWatchesForClusterQuery = `SELECT id, cluster_id, name, current_sequence, current_merged_at
		FROM watches WHERE cluster_id=$1 ORDER BY id`
	// The WHERE guard keeps the pointer monotonic under concurrent merge
	// events for the same watch; zero rows affected means a stale write.
	setCurrentVersionQuery = `UPDATE watches SET current_sequence=$2, current_merged_at=$3
		WHERE id=$1 AND (current_sequence IS NULL OR current_sequence <= $2)`
)

// CreateWatch registers a tracked application instance on a cluster.
func (p *Postgres) CreateWatch(ctx context.Context, watch entities.Watch) (*entities.Watch, error) {
	if _, err := p.db.Exec(ctx, insertWatchQuery, watch.ID, watch.ClusterID, watch.Name); err != nil {
		var pgErr *pgconn.PgError
		p.log.Errorw("failed to insert watch", "error", err, "watch_id", watch.ID)
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, entities.ErrWatchExists
			case "23503":
				return nil, entities.ErrClusterNotFound
			}
		}
		return nil, fmt.Errorf("insert watch: %w", err)
	}

	p.log.Infow("watch registered", "watch_id", watch.ID, "cluster_id", watch.ClusterID)
	return &watch, nil
}

// GetWatch returns a watch by id.
func (p *Postgres) GetWatch(ctx context.Context, watchID string) (*entities.Watch, error) {
	var w entities.Watch
	if err := p.db.QueryRow(ctx, selectWatchQuery, watchID).
		Scan(&w.ID, &w.ClusterID, &w.Name, &w.CurrentSequence, &w.CurrentMergedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrWatchNotFound
		}
		p.log.Errorw("failed to select watch", "error", err, "watch_id", watchID)
		return nil, fmt.Errorf("get watch: %w", err)
	}
	return &w, nil
}

// ListWatchesForCluster returns all watches on a cluster.
func (p *Postgres) ListWatchesForCluster(ctx context.Context, clusterID string) ([]entities.Watch, error) {
	rows, err := p.db.Query(ctx, selectWatchesForClusterQuery, clusterID)
	if err != nil {
		p.log.Errorw("failed to select watches", "error", err, "cluster_id", clusterID)
		return nil, fmt.Errorf("select watches: %w", err)
	}
	defer rows.Close()

	watches := make([]entities.Watch, 0)
	for rows.Next() {
		var w entities.Watch
		if err := rows.Scan(&w.ID, &w.ClusterID, &w.Name, &w.CurrentSequence, &w.CurrentMergedAt); err != nil {
			p.log.Errorw("failed to scan watch", "error", err)
			return nil, err
		}
		watches = append(watches, w)
	}
	if err := rows.Err(); err != nil {
		p.log.Errorw("error iterating watches", "error", err)
		return nil, err
	}
	return watches, nil
}

// SetCurrentVersion advances the current-version pointer. A write with a
// sequence below the stored one affects zero rows and is not an error.
func (p *Postgres) SetCurrentVersion(ctx context.Context, watchID string, sequence int64, mergedAt *time.Time) error {
	tag, err := p.db.Exec(ctx, setCurrentVersionQuery, watchID, sequence, mergedAt)
	if err != nil {
		p.log.Errorw("failed to set current version", "error", err, "watch_id", watchID, "sequence", sequence)
		return fmt.Errorf("set current version: %w", err)
	}
	if tag.RowsAffected() == 0 {
		p.log.Infow("current version unchanged", "watch_id", watchID, "sequence", sequence)
	}
	return nil
}
