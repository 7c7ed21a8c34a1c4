package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/apex/log"
	geojson "github.com/paulmach/go.geojson"

	"accessmap/apperr"
	"accessmap/geo"
	"accessmap/models"
)

// ZoneService owns zone definitions. A zone belongs to exactly one
// organization; mutation is rejected for anyone else.
type ZoneService struct {
	db *sql.DB
}

func NewZoneService(db *sql.DB) *ZoneService {
	return &ZoneService{db: db}
}

func (s *ZoneService) CreateZone(ctx context.Context, name string, boundary *geojson.Feature, ownerOrgID string) (uint64, error) {
	if name == "" {
		return 0, apperr.Validationf("zone name is required")
	}
	ring, err := geo.RingFromFeature(boundary)
	if err != nil {
		return 0, apperr.Validationf("invalid zone boundary: %v", err)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		log.Errorf("Error creating transaction: %v", err)
		return 0, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM zones WHERE name = ?`, name)
	if err != nil {
		return 0, err
	}
	nameTaken := rows.Next()
	rows.Close()
	if nameTaken {
		return 0, apperr.Conflictf("zone name %q already exists", name)
	}

	ringJSON, err := json.Marshal(ring.ToFeature())
	if err != nil {
		return 0, err
	}
	result, err := tx.ExecContext(ctx,
		`INSERT INTO zones (name, owner_org_id, ring_json) VALUES (?, ?, ?)`,
		name, ownerOrgID, string(ringJSON))
	logResult("insertZone", result, err, true)
	if err != nil {
		return 0, err
	}
	newID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO zone_index (zone_id, geom) VALUES (?, ST_GeomFromText(?, 4326))`,
		newID, ring.ToWKT())
	logResult("insertZoneIndex", result, err, true)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	log.Infof("Created zone %d (%s) for org %s", newID, name, ownerOrgID)
	return uint64(newID), nil
}

func (s *ZoneService) UpdateZone(ctx context.Context, zoneID uint64, name string, boundary *geojson.Feature, requestingOrgID string) error {
	if name == "" {
		return apperr.Validationf("zone name is required")
	}
	ring, err := geo.RingFromFeature(boundary)
	if err != nil {
		return apperr.Validationf("invalid zone boundary: %v", err)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		log.Errorf("Error creating transaction: %v", err)
		return err
	}
	defer tx.Rollback()

	if err := checkZoneOwner(ctx, tx, zoneID, requestingOrgID); err != nil {
		return err
	}

	rows, err := tx.QueryContext(ctx, `SELECT id FROM zones WHERE name = ? AND id != ?`, name, zoneID)
	if err != nil {
		return err
	}
	nameTaken := rows.Next()
	rows.Close()
	if nameTaken {
		return apperr.Conflictf("zone name %q already exists", name)
	}

	ringJSON, err := json.Marshal(ring.ToFeature())
	if err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx,
		`UPDATE zones SET name = ?, ring_json = ? WHERE id = ?`,
		name, string(ringJSON), zoneID)
	logResult("updateZone", result, err, false)
	if err != nil {
		return err
	}

	result, err = tx.ExecContext(ctx, `DELETE FROM zone_index WHERE zone_id = ?`, zoneID)
	logResult("deletePreviousZoneIndex", result, err, false)
	if err != nil {
		return err
	}
	result, err = tx.ExecContext(ctx,
		`INSERT INTO zone_index (zone_id, geom) VALUES (?, ST_GeomFromText(?, 4326))`,
		zoneID, ring.ToWKT())
	logResult("insertZoneIndex", result, err, true)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *ZoneService) DeleteZone(ctx context.Context, zoneID uint64, requestingOrgID string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		log.Errorf("Error creating transaction: %v", err)
		return err
	}
	defer tx.Rollback()

	if err := checkZoneOwner(ctx, tx, zoneID, requestingOrgID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM zones WHERE id = ?`, zoneID)
	logResult("deleteZone", result, err, true)
	if err != nil {
		return err
	}
	result, err = tx.ExecContext(ctx, `DELETE FROM zone_index WHERE zone_id = ?`, zoneID)
	logResult("deleteZoneIndex", result, err, false)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Infof("Deleted zone %d on behalf of org %s", zoneID, requestingOrgID)
	return nil
}

func checkZoneOwner(ctx context.Context, tx *sql.Tx, zoneID uint64, requestingOrgID string) error {
	rows, err := tx.QueryContext(ctx, `SELECT owner_org_id FROM zones WHERE id = ?`, zoneID)
	if err != nil {
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		return apperr.NotFoundf("zone %d not found", zoneID)
	}
	var owner string
	if err := rows.Scan(&owner); err != nil {
		return err
	}
	if owner != requestingOrgID {
		return apperr.Authorizationf("org %s does not own zone %d", requestingOrgID, zoneID)
	}
	return nil
}

// ListZones returns zones in creation order, optionally restricted to one
// owning organization.
func (s *ZoneService) ListZones(ctx context.Context, ownerOrgID string) ([]models.Zone, error) {
	query := `SELECT id, name, owner_org_id, ring_json, created_at FROM zones ORDER BY id`
	args := []any{}
	if ownerOrgID != "" {
		query = `SELECT id, name, owner_org_id, ring_json, created_at FROM zones WHERE owner_org_id = ? ORDER BY id`
		args = append(args, ownerOrgID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	zones := []models.Zone{}
	for rows.Next() {
		zone, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, *zone)
	}
	return zones, rows.Err()
}

func (s *ZoneService) GetZone(ctx context.Context, zoneID uint64) (*models.Zone, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, owner_org_id, ring_json, created_at FROM zones WHERE id = ?`, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, apperr.NotFoundf("zone %d not found", zoneID)
	}
	return scanZone(rows)
}

func (s *ZoneService) GetZonesCount(ctx context.Context) (uint64, error) {
	var count uint64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM zones`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanZone(rows *sql.Rows) (*models.Zone, error) {
	var (
		zone     models.Zone
		ringJSON string
		created  time.Time
	)
	if err := rows.Scan(&zone.ID, &zone.Name, &zone.OwnerOrgID, &ringJSON, &created); err != nil {
		return nil, err
	}
	zone.CreatedAt = created

	feature, err := geojson.UnmarshalFeature([]byte(ringJSON))
	if err != nil {
		return nil, err
	}
	ring, err := geo.RingFromFeature(feature)
	if err != nil {
		return nil, err
	}
	zone.Ring = ring
	return &zone, nil
}
