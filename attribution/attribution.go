// Package attribution answers which zones geographically contain which
// reports. Everything here is a pure function over a snapshot; nothing
// mutates state, so callers may run these with arbitrary parallelism.
package attribution

import (
	"accessmap/geo"
	"accessmap/models"
)

// ZonesContaining returns every zone whose ring contains the point. A point
// may fall inside overlapping zones drawn by different organizations; all of
// them are returned, in the input order.
func ZonesContaining(p geo.Point, zones []models.Zone) []models.Zone {
	matched := []models.Zone{}
	for _, z := range zones {
		if z.Ring.Contains(p) {
			matched = append(matched, z)
		}
	}
	return matched
}

// FirstZoneContaining iterates zones in the caller-supplied order and
// returns the first one containing the point, or nil. First-match-wins is a
// deliberate simplification for single-label assignment (leaderboard
// counting); use ZonesContaining where overlaps matter.
func FirstZoneContaining(p geo.Point, zones []models.Zone) *models.Zone {
	for i := range zones {
		if zones[i].Ring.Contains(p) {
			return &zones[i]
		}
	}
	return nil
}

// ReportsInZone filters reports contained in the zone. Reports without
// usable coordinates are skipped, not failed.
func ReportsInZone(zone models.Zone, reports []models.Report) []models.Report {
	contained := []models.Report{}
	for _, r := range reports {
		p, ok := r.Point()
		if !ok {
			continue
		}
		if zone.Ring.Contains(p) {
			contained = append(contained, r)
		}
	}
	return contained
}

// ReportsInAnyZone returns reports contained by at least one of the zones
// (union semantics), in the input report order.
func ReportsInAnyZone(reports []models.Report, zones []models.Zone) []models.Report {
	contained := []models.Report{}
	for _, r := range reports {
		p, ok := r.Point()
		if !ok {
			continue
		}
		if FirstZoneContaining(p, zones) != nil {
			contained = append(contained, r)
		}
	}
	return contained
}
