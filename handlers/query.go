package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"accessmap/attribution"
	"accessmap/geo"
	"accessmap/mapaggr"
	"accessmap/models"
)

func parseFloatQuery(c *gin.Context, name string) (float64, bool) {
	raw, has := c.GetQuery(name)
	if !has {
		c.String(http.StatusBadRequest, fmt.Sprintf("%s query param is required", name))
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Errorf("Error in parsing %s param: %v", name, err)
		c.String(http.StatusBadRequest, fmt.Sprintf("Parsing %s: %v", name, err))
		return 0, false
	}
	return v, true
}

// ZonesContaining returns every zone containing the queried point. The
// query carries lat/lon params; conversion into the canonical ordering
// happens here, at the boundary.
func (h *Handler) ZonesContaining(c *gin.Context) {
	lat, ok := parseFloatQuery(c, "lat")
	if !ok {
		return
	}
	lon, ok := parseFloatQuery(c, "lon")
	if !ok {
		return
	}

	zones, err := h.zones.ListZones(c.Request.Context(), "")
	if err != nil {
		log.Errorf("Error getting zones: %v", err)
		respondError(c, err)
		return
	}

	matched := attribution.ZonesContaining(geo.PointFromLatLng(lat, lon), zones)
	payload := make([]models.ZonePayload, len(matched))
	for i, z := range matched {
		payload[i] = models.ZonePayload{
			ID:         z.ID,
			Name:       z.Name,
			OwnerOrgID: z.OwnerOrgID,
			Boundary:   z.Feature(),
			CreatedAt:  z.CreatedAt.Format(time.RFC3339),
		}
	}
	c.IndentedJSON(http.StatusOK, models.ZonesResponse{Zones: payload})
}

// ReportsInZone returns the reports geographically contained in one zone.
func (h *Handler) ReportsInZone(c *gin.Context) {
	zoneIDStr := c.Query("zone_id")
	zoneID, err := strconv.ParseUint(zoneIDStr, 10, 64)
	if err != nil {
		log.Errorf("Error in parsing zone_id param: %v", err)
		c.String(http.StatusBadRequest, fmt.Sprintf("Parsing zone_id: %v", err))
		return
	}

	zone, err := h.zones.GetZone(c.Request.Context(), zoneID)
	if err != nil {
		log.Errorf("Error getting zone %d: %v", zoneID, err)
		respondError(c, err)
		return
	}
	reports, err := h.reports.ListReports(c.Request.Context())
	if err != nil {
		log.Errorf("Error listing reports: %v", err)
		respondError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, models.ReportsResponse{
		Reports: attribution.ReportsInZone(*zone, reports),
	})
}

// ReportsInAnyZone returns the reports contained by at least one zone,
// optionally restricted to one organization's zones.
func (h *Handler) ReportsInAnyZone(c *gin.Context) {
	zones, err := h.zones.ListZones(c.Request.Context(), c.Query("owner_org_id"))
	if err != nil {
		log.Errorf("Error getting zones: %v", err)
		respondError(c, err)
		return
	}
	reports, err := h.reports.ListReports(c.Request.Context())
	if err != nil {
		log.Errorf("Error listing reports: %v", err)
		respondError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, models.ReportsResponse{
		Reports: attribution.ReportsInAnyZone(reports, zones),
	})
}

// GetMap buckets all report locations into S2 cells sized for the queried
// viewport.
func (h *Handler) GetMap(c *gin.Context) {
	latMin, ok := parseFloatQuery(c, "sw_lat")
	if !ok {
		return
	}
	lonMin, ok := parseFloatQuery(c, "sw_lon")
	if !ok {
		return
	}
	latMax, ok := parseFloatQuery(c, "ne_lat")
	if !ok {
		return
	}
	lonMax, ok := parseFloatQuery(c, "ne_lon")
	if !ok {
		return
	}

	reports, err := h.reports.ListReports(c.Request.Context())
	if err != nil {
		log.Errorf("Error listing reports: %v", err)
		respondError(c, err)
		return
	}

	aggr := mapaggr.New(&models.ViewPort{
		LatMin: latMin,
		LonMin: lonMin,
		LatMax: latMax,
		LonMax: lonMax,
	})
	for _, r := range reports {
		if _, ok := r.Point(); !ok {
			continue
		}
		aggr.AddPoint(r.Latitude, r.Longitude)
	}
	c.IndentedJSON(http.StatusOK, aggr.ToArray())
}

func (h *Handler) LeaderboardZones(c *gin.Context) {
	counts, err := h.boards.ZoneVerifiedCounts(c.Request.Context(), actingOrg(c))
	if err != nil {
		log.Errorf("Error computing zone leaderboard: %v", err)
		respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, counts)
}

func (h *Handler) LeaderboardOrgTotals(c *gin.Context) {
	totals, err := h.boards.OrgTotals(c.Request.Context())
	if err != nil {
		log.Errorf("Error computing org totals: %v", err)
		respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, totals)
}

func (h *Handler) LeaderboardFastest(c *gin.Context) {
	ranked, err := h.boards.FastestResponders(c.Request.Context())
	if err != nil {
		log.Errorf("Error computing fastest responders: %v", err)
		respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, ranked)
}

func (h *Handler) LeaderboardPlaces(c *gin.Context) {
	ranked, err := h.boards.TopPlaces(c.Request.Context())
	if err != nil {
		log.Errorf("Error computing top places: %v", err)
		respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, ranked)
}
