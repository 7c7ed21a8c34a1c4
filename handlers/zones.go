package handlers

import (
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"accessmap/apperr"
	"accessmap/models"
)

func (h *Handler) CreateZone(c *gin.Context) {
	args := &models.CreateZoneRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /create_zone call: %v", err)
		return
	}
	if args.Zone == nil {
		respondError(c, apperr.Validationf("zone payload is required"))
		return
	}

	orgID := actingOrg(c)
	zoneID, err := h.zones.CreateZone(c.Request.Context(), args.Zone.Name, args.Zone.Boundary, orgID)
	if err != nil {
		log.Errorf("Error creating zone %q for org %s: %v", args.Zone.Name, orgID, err)
		respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, models.CreateZoneResponse{ZoneID: zoneID})
}

func (h *Handler) UpdateZone(c *gin.Context) {
	args := &models.UpdateZoneRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /update_zone call: %v", err)
		return
	}
	if args.Zone == nil {
		respondError(c, apperr.Validationf("zone payload is required"))
		return
	}

	orgID := actingOrg(c)
	if err := h.zones.UpdateZone(c.Request.Context(), args.ZoneID, args.Zone.Name, args.Zone.Boundary, orgID); err != nil {
		log.Errorf("Error updating zone %d by org %s: %v", args.ZoneID, orgID, err)
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) DeleteZone(c *gin.Context) {
	args := &models.DeleteZoneRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /delete_zone call: %v", err)
		return
	}

	orgID := actingOrg(c)
	if err := h.zones.DeleteZone(c.Request.Context(), args.ZoneID, orgID); err != nil {
		log.Errorf("Error deleting zone %d by org %s: %v", args.ZoneID, orgID, err)
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) GetZones(c *gin.Context) {
	zones, err := h.zones.ListZones(c.Request.Context(), c.Query("owner_org_id"))
	if err != nil {
		log.Errorf("Error getting zones: %v", err)
		respondError(c, err)
		return
	}

	payload := make([]models.ZonePayload, len(zones))
	for i, z := range zones {
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

func (h *Handler) GetZonesCount(c *gin.Context) {
	cnt, err := h.zones.GetZonesCount(c.Request.Context())
	if err != nil {
		log.Errorf("Error getting zones count: %v", err)
		respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, models.ZonesCountResponse{Count: cnt})
}
