// Package leaderboard computes ranked statistics over the report and zone
// stores. Results are recomputed from a full snapshot on every request;
// nothing is maintained incrementally. All rankings break ties on a stable
// secondary key so repeated calls over the same data are reproducible.
package leaderboard

import (
	"sort"
	"time"

	"accessmap/attribution"
	"accessmap/models"
)

type ZoneCount struct {
	ZoneID          uint64 `json:"zone_id"`
	ZoneName        string `json:"zone_name"`
	VerifiedReports int    `json:"verified_reports"`
}

type OrgCount struct {
	OrgID string `json:"org_id"`
	Count int    `json:"count"`
}

type OrgTotals struct {
	Authored   []OrgCount `json:"authored"`
	Verified   []OrgCount `json:"verified"`
	SpamMarked []OrgCount `json:"spam_marked"`
}

type ResponderStat struct {
	OrgID             string  `json:"org_id"`
	OrgName           string  `json:"org_name"`
	Responses         int     `json:"responses"`
	AvgLatencySeconds float64 `json:"avg_latency_seconds"`
}

type PlaceCount struct {
	Place string `json:"place"`
	Count int    `json:"count"`
}

// RankZoneVerifiedCounts counts, per zone, the reports that fall inside it
// and carry at least one verification. Zones must arrive in creation order;
// a report in overlapping zones credits only the first one. Sorted by count
// descending, ties kept in zone creation order.
func RankZoneVerifiedCounts(zones []models.Zone, reports []models.Report) []ZoneCount {
	counts := make([]ZoneCount, len(zones))
	byZoneID := map[uint64]*ZoneCount{}
	for i, z := range zones {
		counts[i] = ZoneCount{ZoneID: z.ID, ZoneName: z.Name}
		byZoneID[z.ID] = &counts[i]
	}

	for _, r := range reports {
		if r.VerifiedCount() < 1 {
			continue
		}
		p, ok := r.Point()
		if !ok {
			continue
		}
		if z := attribution.FirstZoneContaining(p, zones); z != nil {
			byZoneID[z.ID].VerifiedReports++
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].VerifiedReports > counts[j].VerifiedReports
	})
	return counts
}

// RankOrgTotals produces the three per-organization rankings: reports
// authored, reports verified and reports marked spam. Each is sorted
// independently, descending, ties by org id.
func RankOrgTotals(reports []models.Report) *OrgTotals {
	authored := map[string]int{}
	verified := map[string]int{}
	spamMarked := map[string]int{}

	for _, r := range reports {
		if r.SubmittedByOrg {
			authored[r.SubmittedBy]++
		}
		for orgID := range r.Verifications {
			verified[orgID]++
		}
		for orgID := range r.SpamMarks {
			spamMarked[orgID]++
		}
	}

	return &OrgTotals{
		Authored:   rankCounts(authored),
		Verified:   rankCounts(verified),
		SpamMarked: rankCounts(spamMarked),
	}
}

func rankCounts(counts map[string]int) []OrgCount {
	ranked := make([]OrgCount, 0, len(counts))
	for orgID, count := range counts {
		ranked = append(ranked, OrgCount{OrgID: orgID, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].OrgID < ranked[j].OrgID
	})
	return ranked
}

// RankFastestResponders averages official-response latency per responding
// organization, fastest first. Reports without an official response don't
// participate at all. Ties by org id.
func RankFastestResponders(reports []models.Report) []ResponderStat {
	type acc struct {
		name  string
		total time.Duration
		count int
	}
	byOrg := map[string]*acc{}
	for _, r := range reports {
		resp := r.OfficialResponse
		if resp == nil {
			continue
		}
		a, ok := byOrg[resp.OrgID]
		if !ok {
			a = &acc{name: resp.OrgName}
			byOrg[resp.OrgID] = a
		}
		a.total += resp.RespondedAt.Sub(r.CreatedAt)
		a.count++
	}

	ranked := make([]ResponderStat, 0, len(byOrg))
	for orgID, a := range byOrg {
		ranked = append(ranked, ResponderStat{
			OrgID:             orgID,
			OrgName:           a.name,
			Responses:         a.count,
			AvgLatencySeconds: a.total.Seconds() / float64(a.count),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AvgLatencySeconds != ranked[j].AvgLatencySeconds {
			return ranked[i].AvgLatencySeconds < ranked[j].AvgLatencySeconds
		}
		return ranked[i].OrgID < ranked[j].OrgID
	})
	return ranked
}

// RankTopPlaces counts reports per place name, ignoring empty names, and
// returns the top limit entries. Ties by place name.
func RankTopPlaces(reports []models.Report, limit int) []PlaceCount {
	counts := map[string]int{}
	for _, r := range reports {
		if r.PlaceName == "" {
			continue
		}
		counts[r.PlaceName]++
	}

	ranked := make([]PlaceCount, 0, len(counts))
	for place, count := range counts {
		ranked = append(ranked, PlaceCount{Place: place, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Place < ranked[j].Place
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
