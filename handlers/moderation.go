package handlers

import (
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"accessmap/models"
)

func (h *Handler) SetVerified(c *gin.Context) {
	args := &models.SetVerifiedRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /set_verified call: %v", err)
		return
	}

	orgID := actingOrg(c)
	if err := h.moderation.SetVerified(c.Request.Context(), args.ReportID, orgID, args.Verified); err != nil {
		log.Errorf("Error setting verification on report %s by %s: %v", args.ReportID, orgID, err)
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) SetSpam(c *gin.Context) {
	args := &models.SetSpamRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /set_spam call: %v", err)
		return
	}

	orgID := actingOrg(c)
	if err := h.moderation.SetSpam(c.Request.Context(), args.ReportID, orgID, args.Spam, args.Reason); err != nil {
		log.Errorf("Error setting spam mark on report %s by %s: %v", args.ReportID, orgID, err)
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) SetUserSpam(c *gin.Context) {
	args := &models.SetUserSpamRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /set_user_spam call: %v", err)
		return
	}

	orgID := actingOrg(c)
	if err := h.moderation.SetUserSpam(c.Request.Context(), args.UserID, orgID, args.Spam, args.Reason); err != nil {
		log.Errorf("Error setting user spam mark on %s by %s: %v", args.UserID, orgID, err)
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) GetUserStatus(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.String(http.StatusBadRequest, "user_id query param is required")
		return
	}

	status, err := h.moderation.GetUserStatus(c.Request.Context(), userID)
	if err != nil {
		log.Errorf("Error getting status for user %s: %v", userID, err)
		respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, models.UserStatusResponse{Status: *status})
}
