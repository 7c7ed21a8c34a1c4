package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"accessmap/apperr"
	"accessmap/models"
)

// ReportService owns report records together with their moderation
// sub-state (verifications, spam marks, trust, comments, official response).
type ReportService struct {
	db *sql.DB
}

func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{db: db}
}

// SubmitReport validates and stores a new report. A submission from a
// globally suspended user is rejected before anything is written.
func (s *ReportService) SubmitReport(ctx context.Context, req *models.SubmitReportRequest) (*models.Report, error) {
	if !models.IsValidCategory(req.Category) {
		return nil, apperr.Validationf("invalid category %q", req.Category)
	}
	if req.SubmittedBy == "" {
		return nil, apperr.Validationf("submitted_by is required")
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return nil, apperr.Validationf("coordinates (%g, %g) out of range", req.Latitude, req.Longitude)
	}

	if !req.AsOrg {
		blocked, reason, err := s.userBlocked(ctx, req.SubmittedBy)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, apperr.SpamBlocked(reason)
		}
	}

	report := &models.Report{
		ID:             uuid.New().String(),
		Category:       req.Category,
		Description:    req.Description,
		MediaURL:       req.MediaURL,
		PlaceName:      req.PlaceName,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		SubmittedBy:    req.SubmittedBy,
		SubmittedByOrg: req.AsOrg,
		DisplayName:    req.DisplayName,
		CreatedAt:      time.Now().UTC(),
	}

	result, err := s.db.ExecContext(ctx, `INSERT
		INTO reports (id, category, description, media_url, place_name, latitude, longitude, submitted_by, submitted_by_org, display_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.Category, report.Description, report.MediaURL, report.PlaceName,
		report.Latitude, report.Longitude, report.SubmittedBy, report.SubmittedByOrg,
		report.DisplayName, report.CreatedAt)
	logResult("insertReport", result, err, true)
	if err != nil {
		return nil, err
	}
	log.Infof("Saved report %s (%s) by %s", report.ID, report.Category, report.SubmittedBy)
	return report, nil
}

func (s *ReportService) userBlocked(ctx context.Context, userID string) (bool, string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT is_blocked, blocked_reason FROM users WHERE id = ?`, userID)
	if err != nil {
		return false, "", err
	}
	defer rows.Close()
	if !rows.Next() {
		// Unknown users have no spam marks yet.
		return false, "", nil
	}
	var (
		blocked bool
		reason  sql.NullString
	)
	if err := rows.Scan(&blocked, &reason); err != nil {
		return false, "", err
	}
	return blocked, reason.String, nil
}

// DeleteReport removes a report. Only the original submitter may do this.
func (s *ReportService) DeleteReport(ctx context.Context, reportID, requesterID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT submitted_by FROM reports WHERE id = ?`, reportID)
	if err != nil {
		return err
	}
	var submitter string
	found := rows.Next()
	if found {
		if err := rows.Scan(&submitter); err != nil {
			rows.Close()
			return err
		}
	}
	rows.Close()
	if !found {
		return apperr.NotFoundf("report %s not found", reportID)
	}
	if submitter != requesterID {
		return apperr.Authorizationf("user %s is not the submitter of report %s", requesterID, reportID)
	}

	for _, stmt := range []string{
		`DELETE FROM report_verifications WHERE report_id = ?`,
		`DELETE FROM report_spam_marks WHERE report_id = ?`,
		`DELETE FROM report_trust WHERE report_id = ?`,
		`DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM report_comments WHERE report_id = ?)`,
		`DELETE FROM report_comments WHERE report_id = ?`,
		`DELETE FROM official_responses WHERE report_id = ?`,
		`DELETE FROM reports WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, reportID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Infof("Report %s deleted by its submitter", reportID)
	return nil
}

func (s *ReportService) AddComment(ctx context.Context, req *models.AddCommentRequest) (*models.Comment, error) {
	if req.Text == "" {
		return nil, apperr.Validationf("comment text is required")
	}
	if err := s.reportExists(ctx, req.ReportID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		AuthorID:  req.AuthorID,
		Author:    req.Author,
		Text:      req.Text,
		CreatedAt: time.Now().UTC(),
	}
	result, err := s.db.ExecContext(ctx, `INSERT
		INTO report_comments (id, report_id, author_id, author, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID, req.ReportID, comment.AuthorID, comment.Author, comment.Text, comment.CreatedAt)
	logResult("insertComment", result, err, true)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// LikeComment toggles one user's like on a comment. Repeating the same state
// is a no-op.
func (s *ReportService) LikeComment(ctx context.Context, commentID, userID string, liked bool) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM report_comments WHERE id = ?`, commentID)
	if err != nil {
		return err
	}
	exists := rows.Next()
	rows.Close()
	if !exists {
		return apperr.NotFoundf("comment %s not found", commentID)
	}

	if liked {
		result, err := s.db.ExecContext(ctx,
			`INSERT IGNORE INTO comment_likes (comment_id, user_id) VALUES (?, ?)`,
			commentID, userID)
		logResult("insertCommentLike", result, err, false)
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM comment_likes WHERE comment_id = ? AND user_id = ?`, commentID, userID)
	logResult("deleteCommentLike", result, err, false)
	return err
}

// SetTrust toggles one user's trust reaction on a report, with set
// semantics per user.
func (s *ReportService) SetTrust(ctx context.Context, reportID, userID string, trusted bool) error {
	if err := s.reportExists(ctx, reportID); err != nil {
		return err
	}
	if trusted {
		result, err := s.db.ExecContext(ctx,
			`INSERT IGNORE INTO report_trust (report_id, user_id) VALUES (?, ?)`,
			reportID, userID)
		logResult("insertTrust", result, err, false)
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM report_trust WHERE report_id = ? AND user_id = ?`, reportID, userID)
	logResult("deleteTrust", result, err, false)
	return err
}

// SetOfficialResponse records an organization's response. A report carries
// at most one; a repeated call replaces it.
func (s *ReportService) SetOfficialResponse(ctx context.Context, reportID, orgID, orgName, text string) error {
	if text == "" {
		return apperr.Validationf("response text is required")
	}
	if err := s.reportExists(ctx, reportID); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `INSERT
		INTO official_responses (report_id, org_id, org_name, text, responded_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE org_id = ?, org_name = ?, text = ?, responded_at = ?`,
		reportID, orgID, orgName, text, time.Now().UTC(),
		orgID, orgName, text, time.Now().UTC())
	logResult("upsertOfficialResponse", result, err, false)
	return err
}

func (s *ReportService) reportExists(ctx context.Context, reportID string) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM reports WHERE id = ?`, reportID)
	if err != nil {
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		return apperr.NotFoundf("report %s not found", reportID)
	}
	return nil
}

func (s *ReportService) GetReport(ctx context.Context, reportID string) (*models.Report, error) {
	reports, err := s.loadReports(ctx, `SELECT id, category, description, media_url, place_name, latitude, longitude, submitted_by, submitted_by_org, display_name, created_at FROM reports WHERE id = ?`, reportID)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, apperr.NotFoundf("report %s not found", reportID)
	}
	return &reports[0], nil
}

// ListReports returns all reports with their moderation sub-state attached,
// ordered by creation time.
func (s *ReportService) ListReports(ctx context.Context) ([]models.Report, error) {
	return s.loadReports(ctx, `SELECT id, category, description, media_url, place_name, latitude, longitude, submitted_by, submitted_by_org, display_name, created_at FROM reports ORDER BY created_at, id`)
}

func (s *ReportService) ListReportsBySubmitter(ctx context.Context, submitterID string) ([]models.Report, error) {
	return s.loadReports(ctx, `SELECT id, category, description, media_url, place_name, latitude, longitude, submitted_by, submitted_by_org, display_name, created_at FROM reports WHERE submitted_by = ? ORDER BY created_at, id`, submitterID)
}

func (s *ReportService) loadReports(ctx context.Context, query string, args ...any) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []models.Report{}
	index := map[string]*models.Report{}
	for rows.Next() {
		var (
			r           models.Report
			description sql.NullString
			mediaURL    sql.NullString
			placeName   sql.NullString
			displayName sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Category, &description, &mediaURL, &placeName,
			&r.Latitude, &r.Longitude, &r.SubmittedBy, &r.SubmittedByOrg, &displayName,
			&r.CreatedAt); err != nil {
			return nil, err
		}
		r.Description = description.String
		r.MediaURL = mediaURL.String
		r.PlaceName = placeName.String
		r.DisplayName = displayName.String
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range reports {
		index[reports[i].ID] = &reports[i]
	}
	if len(reports) == 0 {
		return reports, nil
	}

	if err := s.attachModeration(ctx, index); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *ReportService) attachModeration(ctx context.Context, index map[string]*models.Report) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT report_id, org_id, verified_at FROM report_verifications`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var (
			reportID string
			v        models.Verification
		)
		if err := rows.Scan(&reportID, &v.OrgID, &v.VerifiedAt); err != nil {
			rows.Close()
			return err
		}
		if r, ok := index[reportID]; ok {
			if r.Verifications == nil {
				r.Verifications = map[string]models.Verification{}
			}
			r.Verifications[v.OrgID] = v
		}
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT report_id, org_id, reason, marked_at FROM report_spam_marks`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var (
			reportID string
			reason   sql.NullString
			m        models.SpamMark
		)
		if err := rows.Scan(&reportID, &m.OrgID, &reason, &m.MarkedAt); err != nil {
			rows.Close()
			return err
		}
		m.Reason = reason.String
		if r, ok := index[reportID]; ok {
			if r.SpamMarks == nil {
				r.SpamMarks = map[string]models.SpamMark{}
			}
			r.SpamMarks[m.OrgID] = m
		}
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `SELECT report_id, user_id FROM report_trust`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var reportID, userID string
		if err := rows.Scan(&reportID, &userID); err != nil {
			rows.Close()
			return err
		}
		if r, ok := index[reportID]; ok {
			r.TrustedBy = append(r.TrustedBy, userID)
		}
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, report_id, author_id, author, text, created_at FROM report_comments ORDER BY created_at, id`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var (
			reportID string
			author   sql.NullString
			c        models.Comment
		)
		if err := rows.Scan(&c.ID, &reportID, &c.AuthorID, &author, &c.Text, &c.CreatedAt); err != nil {
			rows.Close()
			return err
		}
		c.Author = author.String
		if r, ok := index[reportID]; ok {
			r.Comments = append(r.Comments, c)
		}
	}
	rows.Close()

	// Comment slices are done growing, safe to take element pointers now.
	comments := map[string]*models.Comment{}
	for _, r := range index {
		for i := range r.Comments {
			comments[r.Comments[i].ID] = &r.Comments[i]
		}
	}

	rows, err = s.db.QueryContext(ctx, `SELECT comment_id, user_id FROM comment_likes`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var commentID, userID string
		if err := rows.Scan(&commentID, &userID); err != nil {
			rows.Close()
			return err
		}
		if c, ok := comments[commentID]; ok {
			c.LikedBy = append(c.LikedBy, userID)
		}
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT report_id, org_id, org_name, text, responded_at FROM official_responses`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var (
			reportID string
			orgName  sql.NullString
			resp     models.OfficialResponse
		)
		if err := rows.Scan(&reportID, &resp.OrgID, &orgName, &resp.Text, &resp.RespondedAt); err != nil {
			rows.Close()
			return err
		}
		resp.OrgName = orgName.String
		if r, ok := index[reportID]; ok {
			r.OfficialResponse = &resp
		}
	}
	rows.Close()

	return nil
}
