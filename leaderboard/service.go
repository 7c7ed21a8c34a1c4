package leaderboard

import (
	"context"

	"accessmap/database"
)

// TopPlacesLimit caps the most-reported-places ranking.
const TopPlacesLimit = 10

// Service loads snapshots from the stores and runs the pure rankings over
// them. It holds no mutable state of its own.
type Service struct {
	reports *database.ReportService
	zones   *database.ZoneService
}

func NewService(reports *database.ReportService, zones *database.ZoneService) *Service {
	return &Service{reports: reports, zones: zones}
}

// ZoneVerifiedCounts ranks the requesting organization's zones by contained
// verified reports.
func (s *Service) ZoneVerifiedCounts(ctx context.Context, orgID string) ([]ZoneCount, error) {
	zones, err := s.zones.ListZones(ctx, orgID)
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	return RankZoneVerifiedCounts(zones, reports), nil
}

func (s *Service) OrgTotals(ctx context.Context) (*OrgTotals, error) {
	reports, err := s.reports.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	return RankOrgTotals(reports), nil
}

func (s *Service) FastestResponders(ctx context.Context) ([]ResponderStat, error) {
	reports, err := s.reports.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	return RankFastestResponders(reports), nil
}

func (s *Service) TopPlaces(ctx context.Context) ([]PlaceCount, error) {
	reports, err := s.reports.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	return RankTopPlaces(reports, TopPlacesLimit), nil
}
