package handlers

import (
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"accessmap/models"
)

func (h *Handler) SubmitReport(c *gin.Context) {
	args := &models.SubmitReportRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /submit_report call: %v", err)
		return
	}

	report, err := h.reports.SubmitReport(c.Request.Context(), args)
	if err != nil {
		log.Errorf("Failed to save report from %s: %v", args.SubmittedBy, err)
		respondError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, models.SubmitReportResponse{ReportID: report.ID})
}

func (h *Handler) GetReport(c *gin.Context) {
	reportID := c.Query("report_id")
	if reportID == "" {
		c.String(http.StatusBadRequest, "report_id query param is required")
		return
	}

	report, err := h.reports.GetReport(c.Request.Context(), reportID)
	if err != nil {
		log.Errorf("Error getting report %s: %v", reportID, err)
		respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, report)
}

func (h *Handler) GetReports(c *gin.Context) {
	var (
		reports []models.Report
		err     error
	)
	if submitter := c.Query("submitted_by"); submitter != "" {
		reports, err = h.reports.ListReportsBySubmitter(c.Request.Context(), submitter)
	} else {
		reports, err = h.reports.ListReports(c.Request.Context())
	}
	if err != nil {
		log.Errorf("Error listing reports: %v", err)
		respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, models.ReportsResponse{Reports: reports})
}

func (h *Handler) DeleteReport(c *gin.Context) {
	args := &models.DeleteReportRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /delete_report call: %v", err)
		return
	}

	if err := h.reports.DeleteReport(c.Request.Context(), args.ReportID, args.RequesterID); err != nil {
		log.Errorf("Error deleting report %s: %v", args.ReportID, err)
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) AddComment(c *gin.Context) {
	args := &models.AddCommentRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /add_comment call: %v", err)
		return
	}

	comment, err := h.reports.AddComment(c.Request.Context(), args)
	if err != nil {
		log.Errorf("Error adding comment to report %s: %v", args.ReportID, err)
		respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, models.AddCommentResponse{CommentID: comment.ID})
}

func (h *Handler) LikeComment(c *gin.Context) {
	args := &models.LikeCommentRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /like_comment call: %v", err)
		return
	}

	if err := h.reports.LikeComment(c.Request.Context(), args.CommentID, args.UserID, args.Liked); err != nil {
		log.Errorf("Error toggling like on comment %s: %v", args.CommentID, err)
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) SetTrust(c *gin.Context) {
	args := &models.SetTrustRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /set_trust call: %v", err)
		return
	}

	if err := h.reports.SetTrust(c.Request.Context(), args.ReportID, args.UserID, args.Trusted); err != nil {
		log.Errorf("Error toggling trust on report %s: %v", args.ReportID, err)
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) SetOfficialResponse(c *gin.Context) {
	args := &models.SetOfficialResponseRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /set_official_response call: %v", err)
		return
	}

	orgID := actingOrg(c)
	if err := h.reports.SetOfficialResponse(c.Request.Context(), args.ReportID, orgID, args.OrgName, args.Text); err != nil {
		log.Errorf("Error setting official response on report %s: %v", args.ReportID, err)
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
