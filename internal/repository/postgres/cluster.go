package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jacobboykin/kots/internal/entities"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	insertClusterQuery = `INSERT INTO clusters(id, name, gitops_installation_id, gitops_owner, gitops_repo)
		VALUES ($1,$2,$3,$4,$5)`
	selectClustersForRepoQuery = `SELECT id, name, gitops_installation_id, gitops_owner, gitops_repo
		FROM clusters WHERE gitops_owner=$1 AND gitops_repo=$2 ORDER BY id`
)

// CreateCluster registers a deployment target with an optional GitOps binding.
func (p *Postgres) CreateCluster(ctx context.Context, cluster entities.Cluster) (*entities.Cluster, error) {
	var installationID *int64
	var owner, repo *string
	if cluster.GitOps != nil {
		installationID = &cluster.GitOps.InstallationID
		owner = &cluster.GitOps.Owner
		repo = &cluster.GitOps.Repo
	}

	if _, err := p.db.Exec(ctx, insertClusterQuery, cluster.ID, cluster.Name, installationID, owner, repo); err != nil {
		var pgErr *pgconn.PgError
		p.log.Errorw("failed to insert cluster", "error", err, "cluster_id", cluster.ID)
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, entities.ErrClusterExists
		}
		return nil, fmt.Errorf("insert cluster: %w", err)
	}

	p.log.Infow("cluster registered", "cluster_id", cluster.ID, "name", cluster.Name)
	return &cluster, nil
}

// ListClustersForRepo returns clusters bound to the given repository.
func (p *Postgres) ListClustersForRepo(ctx context.Context, owner, repo string) ([]entities.Cluster, error) {
	rows, err := p.db.Query(ctx, selectClustersForRepoQuery, owner, repo)
	if err != nil {
		p.log.Errorw("failed to select clusters", "error", err, "owner", owner, "repo", repo)
		return nil, fmt.Errorf("select clusters: %w", err)
	}
	defer rows.Close()

	clusters := make([]entities.Cluster, 0)
	for rows.Next() {
		var c entities.Cluster
		var installationID *int64
		var gitopsOwner, gitopsRepo *string
		if err := rows.Scan(&c.ID, &c.Name, &installationID, &gitopsOwner, &gitopsRepo); err != nil {
			p.log.Errorw("failed to scan cluster", "error", err)
			return nil, err
		}
		if installationID != nil && gitopsOwner != nil && gitopsRepo != nil {
			c.GitOps = &entities.GitOpsRef{
				InstallationID: *installationID,
				Owner:          *gitopsOwner,
				Repo:           *gitopsRepo,
			}
		}
		clusters = append(clusters, c)
	}
	if err := rows.Err(); err != nil {
		p.log.Errorw("error iterating clusters", "error", err)
		return nil, err
	}
	return clusters, nil
}
