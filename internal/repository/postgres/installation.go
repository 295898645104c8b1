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
	// Webhook delivery is at-least-once; a re-delivered add event must
	// not fail on the existing row.
	insertInstallationQuery = `INSERT INTO installations(id, account_login, account_kind, member_count, installer_login)
		VALUES ($1,$2,$3,$4,$5) ON CONFLICT (id) DO NOTHING RETURNING installed_at`
	deleteInstallationQuery = `DELETE FROM installations WHERE id=$1`
)

// CreateInstallation records an app installation.
func (p *Postgres) CreateInstallation(ctx context.Context, inst entities.Installation) (*entities.Installation, error) {
	var installedAt time.Time
	err := p.db.QueryRow(ctx, insertInstallationQuery,
		inst.ID, inst.AccountLogin, inst.AccountKind, inst.MemberCount, inst.InstallerLogin).Scan(&installedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.log.Infow("installation already recorded", "installation_id", inst.ID)
			return &inst, nil
		}
		p.log.Errorw("failed to insert installation", "error", err, "installation_id", inst.ID)
		return nil, fmt.Errorf("insert installation: %w", err)
	}

	inst.InstalledAt = &installedAt
	p.log.Infow("installation recorded", "installation_id", inst.ID, "account", inst.AccountLogin)
	return &inst, nil
}

// DeleteInstallation removes an installation record. Deleting an absent
// record is a no-op.
func (p *Postgres) DeleteInstallation(ctx context.Context, installationID int64) error {
	if _, err := p.db.Exec(ctx, deleteInstallationQuery, installationID); err != nil {
		p.log.Errorw("failed to delete installation", "error", err, "installation_id", installationID)
		return fmt.Errorf("delete installation: %w", err)
	}
	p.log.Infow("installation removed", "installation_id", installationID)
	return nil
}
