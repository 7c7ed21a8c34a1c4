package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"accessmap/apperr"
	"accessmap/database"
	"accessmap/leaderboard"
	"accessmap/models"
)

type Handler struct {
	reports    *database.ReportService
	zones      *database.ZoneService
	moderation *database.ModerationService
	orgs       *database.OrgService
	boards     *leaderboard.Service
}

func New(reports *database.ReportService, zones *database.ZoneService,
	moderation *database.ModerationService, orgs *database.OrgService,
	boards *leaderboard.Service) *Handler {
	return &Handler{
		reports:    reports,
		zones:      zones,
		moderation: moderation,
		orgs:       orgs,
		boards:     boards,
	}
}

// HealthCheck returns a simple health status
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "accessmap",
	})
}

func (h *Handler) RegisterOrg(c *gin.Context) {
	args := &models.RegisterOrgRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /register_org call: %v", err)
		return
	}

	if err := h.orgs.RegisterOrg(c.Request.Context(), args.OrgID, args.Name); err != nil {
		log.Errorf("Error registering org %s: %v", args.OrgID, err)
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// respondError maps the error taxonomy onto HTTP statuses and renders the
// kind + message (+ spam reason) payload.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	var e *apperr.Error
	if errors.As(err, &e) {
		c.IndentedJSON(status, models.ErrorResponse{
			Kind:       e.Kind.String(),
			Message:    e.Message,
			SpamReason: e.SpamReason,
		})
		return
	}
	c.String(status, fmt.Sprint(err))
}

// actingOrg reads the organization id the auth middleware stored.
func actingOrg(c *gin.Context) string {
	return c.GetString("org_id")
}
