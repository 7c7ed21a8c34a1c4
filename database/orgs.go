package database

import (
	"context"
	"database/sql"

	"accessmap/apperr"
)

// OrgService keeps the registry of known organizations. Identity itself is
// handled by an external provider; this service only answers "does this
// identifier exist".
type OrgService struct {
	db *sql.DB
}

func NewOrgService(db *sql.DB) *OrgService {
	return &OrgService{db: db}
}

func (s *OrgService) RegisterOrg(ctx context.Context, orgID, name string) error {
	if orgID == "" {
		return apperr.Validationf("org_id is required")
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO orgs (id, name) VALUES (?, ?) ON DUPLICATE KEY UPDATE name = ?`,
		orgID, name, name)
	logResult("registerOrg", result, err, false)
	return err
}

func (s *OrgService) OrgExists(ctx context.Context, orgID string) (bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM orgs WHERE id = ?`, orgID)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	return rows.Next(), nil
}
