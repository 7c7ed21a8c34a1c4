package attribution

import (
	"math"
	"testing"

	"accessmap/geo"
	"accessmap/models"
)

func mustRing(t *testing.T, pairs [][2]float64) geo.Ring {
	t.Helper()
	ring, err := geo.RingFromLatLngPairs(pairs)
	if err != nil {
		t.Fatalf("Failed to build ring: %v", err)
	}
	return ring
}

func testZones(t *testing.T) []models.Zone {
	t.Helper()
	// west and east share a strip between lng 77.55 and 77.60.
	return []models.Zone{
		{
			ID:         1,
			Name:       "west",
			OwnerOrgID: "ngo-a",
			Ring: mustRing(t, [][2]float64{
				{12.90, 77.50}, {12.95, 77.50}, {12.95, 77.60}, {12.90, 77.60},
			}),
		},
		{
			ID:         2,
			Name:       "east",
			OwnerOrgID: "ngo-b",
			Ring: mustRing(t, [][2]float64{
				{12.90, 77.55}, {12.95, 77.55}, {12.95, 77.70}, {12.90, 77.70},
			}),
		},
	}
}

func TestZonesContainingOverlap(t *testing.T) {
	zones := testZones(t)

	testCases := []struct {
		name string
		lat  float64
		lng  float64
		want []string
	}{
		{name: "West only", lat: 12.92, lng: 77.52, want: []string{"west"}},
		{name: "Overlap strip", lat: 12.92, lng: 77.57, want: []string{"west", "east"}},
		{name: "East only", lat: 12.92, lng: 77.65, want: []string{"east"}},
		{name: "Outside both", lat: 13.50, lng: 77.50, want: []string{}},
	}

	for _, tc := range testCases {
		got := ZonesContaining(geo.PointFromLatLng(tc.lat, tc.lng), zones)
		if len(got) != len(tc.want) {
			t.Errorf("%s: got %d zones, want %d", tc.name, len(got), len(tc.want))
			continue
		}
		for i, z := range got {
			if z.Name != tc.want[i] {
				t.Errorf("%s: zone %d is %s, want %s", tc.name, i, z.Name, tc.want[i])
			}
		}
	}
}

func TestFirstZoneContainingOrder(t *testing.T) {
	zones := testZones(t)
	overlap := geo.PointFromLatLng(12.92, 77.57)

	if z := FirstZoneContaining(overlap, zones); z == nil || z.Name != "west" {
		t.Errorf("Expected first match west, got %v", z)
	}

	reversed := []models.Zone{zones[1], zones[0]}
	if z := FirstZoneContaining(overlap, reversed); z == nil || z.Name != "east" {
		t.Errorf("Expected first match east after reordering, got %v", z)
	}

	if z := FirstZoneContaining(geo.PointFromLatLng(0.0, 10.0), zones); z != nil {
		t.Errorf("Expected no match, got %s", z.Name)
	}
}

func TestReportsInZoneSkipsBadCoordinates(t *testing.T) {
	zones := testZones(t)
	reports := []models.Report{
		{ID: "r1", Latitude: 12.92, Longitude: 77.52},
		{ID: "r2", Latitude: math.NaN(), Longitude: 77.52},
		{ID: "r3", Latitude: 12.92, Longitude: 77.58},
	}

	got := ReportsInZone(zones[0], reports)
	if len(got) != 2 {
		t.Fatalf("Expected 2 reports in west, got %d", len(got))
	}
	if got[0].ID != "r1" || got[1].ID != "r3" {
		t.Errorf("Expected [r1 r3], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestReportsInZoneAtNullIsland(t *testing.T) {
	// (0, 0) is an ordinary coordinate pair, not a missing-value marker.
	gulf := models.Zone{
		ID:         3,
		Name:       "gulf-of-guinea",
		OwnerOrgID: "ngo-c",
		Ring: mustRing(t, [][2]float64{
			{-1, -1}, {1, -1}, {1, 1}, {-1, 1},
		}),
	}
	reports := []models.Report{
		{ID: "origin", Latitude: 0, Longitude: 0},
		{ID: "far", Latitude: 12.92, Longitude: 77.52},
	}

	got := ReportsInZone(gulf, reports)
	if len(got) != 1 || got[0].ID != "origin" {
		t.Fatalf("Expected the origin report to be attributed, got %v", got)
	}
}

func TestReportsInAnyZoneUnion(t *testing.T) {
	zones := testZones(t)
	reports := []models.Report{
		{ID: "west-only", Latitude: 12.92, Longitude: 77.52},
		{ID: "overlap", Latitude: 12.92, Longitude: 77.57},
		{ID: "east-only", Latitude: 12.92, Longitude: 77.65},
		{ID: "outside", Latitude: 13.50, Longitude: 77.50},
	}

	got := ReportsInAnyZone(reports, zones)
	if len(got) != 3 {
		t.Fatalf("Expected 3 reports under management, got %d", len(got))
	}
	// The overlap report counts once, not twice.
	seen := map[string]int{}
	for _, r := range got {
		seen[r.ID]++
	}
	if seen["overlap"] != 1 {
		t.Errorf("Expected overlap report counted once, got %d", seen["overlap"])
	}
	if seen["outside"] != 0 {
		t.Errorf("Report outside all zones must not be included")
	}
}
