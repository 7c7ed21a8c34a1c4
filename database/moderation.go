package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"

	"accessmap/apperr"
	"accessmap/models"
)

// ModerationService maintains per-organization verification and spam state
// on reports, and per-organization spam state on user accounts. All mark
// mutations are single-statement keyed upserts or deletes, so two
// organizations moderating the same record concurrently never overwrite
// each other's entries.
type ModerationService struct {
	db *sql.DB
	// spamThreshold is the number of distinct organizations whose spam marks
	// suspend a user system-wide.
	spamThreshold int
}

func NewModerationService(db *sql.DB, spamThreshold int) *ModerationService {
	return &ModerationService{db: db, spamThreshold: spamThreshold}
}

// SetVerified records or withdraws one organization's verification of a
// report. Both directions are idempotent; a repeated verification keeps the
// original timestamp.
func (s *ModerationService) SetVerified(ctx context.Context, reportID, orgID string, verified bool) error {
	if err := s.reportExists(ctx, reportID); err != nil {
		return err
	}

	if verified {
		result, err := s.db.ExecContext(ctx,
			`INSERT IGNORE INTO report_verifications (report_id, org_id, verified_at) VALUES (?, ?, ?)`,
			reportID, orgID, time.Now().UTC())
		logResult("insertVerification", result, err, false)
		if err != nil {
			return err
		}
	} else {
		result, err := s.db.ExecContext(ctx,
			`DELETE FROM report_verifications WHERE report_id = ? AND org_id = ?`,
			reportID, orgID)
		logResult("deleteVerification", result, err, false)
		if err != nil {
			return err
		}
	}

	s.appendEvent(ctx, orgID, "set_verified", "report", reportID, map[string]any{"verified": verified})
	return nil
}

// SetSpam records or withdraws one organization's spam mark on a report.
// Re-marking replaces the reason and timestamp in place.
func (s *ModerationService) SetSpam(ctx context.Context, reportID, orgID string, spam bool, reason string) error {
	if err := s.reportExists(ctx, reportID); err != nil {
		return err
	}

	if spam {
		now := time.Now().UTC()
		result, err := s.db.ExecContext(ctx,
			`INSERT INTO report_spam_marks (report_id, org_id, reason, marked_at) VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE reason = ?, marked_at = ?`,
			reportID, orgID, reason, now, reason, now)
		logResult("upsertSpamMark", result, err, false)
		if err != nil {
			return err
		}
	} else {
		result, err := s.db.ExecContext(ctx,
			`DELETE FROM report_spam_marks WHERE report_id = ? AND org_id = ?`,
			reportID, orgID)
		logResult("deleteSpamMark", result, err, false)
		if err != nil {
			return err
		}
	}

	s.appendEvent(ctx, orgID, "set_spam", "report", reportID, map[string]any{"spam": spam, "reason": reason})
	return nil
}

// SetUserSpam mutates one organization's spam mark on a user account and
// recomputes the derived suspension flag inside the same transaction. The
// flag is never writable directly; this is the only code path that touches
// it.
func (s *ModerationService) SetUserSpam(ctx context.Context, userID, orgID string, spam bool, reason string) error {
	if userID == "" {
		return apperr.Validationf("user_id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if spam {
		now := time.Now().UTC()
		result, err := tx.ExecContext(ctx,
			`INSERT INTO user_spam_marks (user_id, org_id, reason, marked_at) VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE reason = ?, marked_at = ?`,
			userID, orgID, reason, now, reason, now)
		logResult("upsertUserSpamMark", result, err, false)
		if err != nil {
			return err
		}
	} else {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM user_spam_marks WHERE user_id = ? AND org_id = ?`,
			userID, orgID)
		logResult("deleteUserSpamMark", result, err, false)
		if err != nil {
			return err
		}
	}

	if err := s.recomputeSuspension(ctx, tx, userID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.appendEvent(ctx, orgID, "set_user_spam", "user", userID, map[string]any{"spam": spam, "reason": reason})
	return nil
}

// recomputeSuspension derives is_blocked from the spam mark count. The
// denormalized reason is the most recent mark's reason, or a synthesized
// message when none was supplied.
func (s *ModerationService) recomputeSuspension(ctx context.Context, tx *sql.Tx, userID string) error {
	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_spam_marks WHERE user_id = ?`, userID).Scan(&count); err != nil {
		return err
	}

	blocked := count >= s.spamThreshold
	blockedReason := ""
	if blocked {
		var latest sql.NullString
		err := tx.QueryRowContext(ctx,
			`SELECT reason FROM user_spam_marks WHERE user_id = ? ORDER BY marked_at DESC, org_id LIMIT 1`,
			userID).Scan(&latest)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		blockedReason = latest.String
		if blockedReason == "" {
			blockedReason = fmt.Sprintf("marked as spammer by %d organizations", count)
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, is_blocked, blocked_reason) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE is_blocked = ?, blocked_reason = ?`,
		userID, blocked, blockedReason, blocked, blockedReason)
	logResult("updateUserSuspension", result, err, false)
	if err != nil {
		return err
	}
	if blocked {
		log.Infof("User %s suspended: %d spam marks (threshold %d)", userID, count, s.spamThreshold)
	}
	return nil
}

func (s *ModerationService) VerifiedCount(ctx context.Context, reportID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM report_verifications WHERE report_id = ?`, reportID).Scan(&count)
	return count, err
}

func (s *ModerationService) SpamCount(ctx context.Context, reportID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM report_spam_marks WHERE report_id = ?`, reportID).Scan(&count)
	return count, err
}

// GetUserStatus returns the user's spam marks and the derived suspension
// state.
func (s *ModerationService) GetUserStatus(ctx context.Context, userID string) (*models.UserStatus, error) {
	status := &models.UserStatus{UserID: userID}

	rows, err := s.db.QueryContext(ctx,
		`SELECT is_blocked, blocked_reason FROM users WHERE id = ?`, userID)
	if err != nil {
		return nil, err
	}
	if rows.Next() {
		var reason sql.NullString
		if err := rows.Scan(&status.IsBlocked, &reason); err != nil {
			rows.Close()
			return nil, err
		}
		status.BlockedReason = reason.String
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		`SELECT org_id, reason, marked_at FROM user_spam_marks WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			reason sql.NullString
			m      models.SpamMark
		)
		if err := rows.Scan(&m.OrgID, &reason, &m.MarkedAt); err != nil {
			return nil, err
		}
		m.Reason = reason.String
		if status.SpamMarks == nil {
			status.SpamMarks = map[string]models.SpamMark{}
		}
		status.SpamMarks[m.OrgID] = m
	}
	return status, rows.Err()
}

func (s *ModerationService) reportExists(ctx context.Context, reportID string) error {
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

// appendEvent writes a best-effort audit row. The primary operation never
// depends on it.
func (s *ModerationService) appendEvent(ctx context.Context, actor, action, targetType, targetID string, details any) {
	var detailsJSON []byte
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			detailsJSON = b
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO moderation_events (actor, action, target_type, target_id, details) VALUES (?, ?, ?, ?, ?)`,
		actor, action, targetType, targetID, detailsJSON)
	if err != nil {
		log.Warnf("Failed to append moderation event %s on %s %s: %v", action, targetType, targetID, err)
	}
}
