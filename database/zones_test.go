package database

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	geojson "github.com/paulmach/go.geojson"

	"accessmap/apperr"
)

func rectFeature() *geojson.Feature {
	// GeoJSON carries (lon, lat) pairs; ring left open, the service closes it.
	return geojson.NewPolygonFeature([][][]float64{{
		{77.50, 12.90},
		{77.50, 12.95},
		{77.60, 12.95},
		{77.60, 12.90},
	}})
}

func TestCreateZone(t *testing.T) {
	it(func() {
		s := NewZoneService(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM zones WHERE name = (.+)").
			WithArgs("downtown").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectExec(`INSERT INTO zones \(name, owner_org_id, ring_json\) VALUES \((.+), (.+), (.+)\)`).
			WithArgs("downtown", "ngo-a", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(7, 1))
		mock.ExpectExec(`INSERT INTO zone_index \(zone_id, geom\) VALUES \((.+), ST_GeomFromText\((.+), 4326\)\)`).
			WithArgs(int64(7), "POLYGON((77.5 12.9,77.5 12.95,77.6 12.95,77.6 12.9,77.5 12.9))").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		zoneID, err := s.CreateZone(context.Background(), "downtown", rectFeature(), "ngo-a")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if zoneID != 7 {
			t.Errorf("Expected zone id 7, got %d", zoneID)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestCreateZoneDuplicateName(t *testing.T) {
	it(func() {
		s := NewZoneService(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM zones WHERE name = (.+)").
			WithArgs("downtown").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		mock.ExpectRollback()

		_, err := s.CreateZone(context.Background(), "downtown", rectFeature(), "ngo-a")
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Errorf("Expected conflict error, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestCreateZoneDegenerateRing(t *testing.T) {
	it(func() {
		s := NewZoneService(db)

		feature := geojson.NewPolygonFeature([][][]float64{{
			{77.50, 12.90},
			{77.60, 12.95},
		}})

		_, err := s.CreateZone(context.Background(), "downtown", feature, "ngo-a")
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("Expected validation error, got %v", err)
		}
		// Validation failures never reach the database.
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestUpdateZoneOwnershipEnforced(t *testing.T) {
	it(func() {
		s := NewZoneService(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_org_id FROM zones WHERE id = (.+)").
			WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"owner_org_id"}).AddRow("ngo-a"))
		mock.ExpectRollback()

		err := s.UpdateZone(context.Background(), 7, "downtown", rectFeature(), "ngo-b")
		if apperr.KindOf(err) != apperr.KindAuthorization {
			t.Errorf("Expected authorization error, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestDeleteZoneOwnershipEnforced(t *testing.T) {
	it(func() {
		testCases := []struct {
			name       string
			requester  string
			expectKind apperr.Kind
		}{
			{name: "Owner deletes", requester: "ngo-a", expectKind: apperr.KindUnknown},
			{name: "Other org deletes", requester: "ngo-b", expectKind: apperr.KindAuthorization},
		}

		for _, testCase := range testCases {
			setUp()
			s := NewZoneService(db)

			mock.ExpectBegin()
			mock.ExpectQuery("SELECT owner_org_id FROM zones WHERE id = (.+)").
				WithArgs(uint64(7)).
				WillReturnRows(sqlmock.NewRows([]string{"owner_org_id"}).AddRow("ngo-a"))
			if testCase.expectKind == apperr.KindUnknown {
				mock.ExpectExec("DELETE FROM zones WHERE id = (.+)").
					WithArgs(uint64(7)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("DELETE FROM zone_index WHERE zone_id = (.+)").
					WithArgs(uint64(7)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			err := s.DeleteZone(context.Background(), 7, testCase.requester)
			if apperr.KindOf(err) != testCase.expectKind {
				t.Errorf("%s: expected kind %v, got %v", testCase.name, testCase.expectKind, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("%s: %v", testCase.name, err)
			}
		}
	})
}

func TestDeleteZoneMissing(t *testing.T) {
	it(func() {
		s := NewZoneService(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT owner_org_id FROM zones WHERE id = (.+)").
			WithArgs(uint64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"owner_org_id"}))
		mock.ExpectRollback()

		err := s.DeleteZone(context.Background(), 9, "ngo-a")
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("Expected not_found error, got %v", err)
		}
	})
}

func TestListZones(t *testing.T) {
	it(func() {
		s := NewZoneService(db)

		ringJSON := `{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[77.5,12.9],[77.5,12.95],[77.6,12.95],[77.6,12.9],[77.5,12.9]]]},"properties":null}`
		mock.ExpectQuery("SELECT id, name, owner_org_id, ring_json, created_at FROM zones WHERE owner_org_id = (.+) ORDER BY id").
			WithArgs("ngo-a").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_org_id", "ring_json", "created_at"}).
				AddRow(1, "downtown", "ngo-a", ringJSON, testTime()).
				AddRow(4, "harbor", "ngo-a", ringJSON, testTime()))

		zones, err := s.ListZones(context.Background(), "ngo-a")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(zones) != 2 {
			t.Fatalf("Expected 2 zones, got %d", len(zones))
		}
		if zones[0].Name != "downtown" || zones[1].Name != "harbor" {
			t.Errorf("Expected creation order [downtown harbor], got [%s %s]", zones[0].Name, zones[1].Name)
		}
		if len(zones[0].Ring) != 5 {
			t.Errorf("Expected 5 ring vertices, got %d", len(zones[0].Ring))
		}
	})
}
