package database

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"accessmap/apperr"
	"accessmap/models"
)

func submitRequest() *models.SubmitReportRequest {
	return &models.SubmitReportRequest{
		Category:    models.CategoryRamp,
		Description: "No ramp at the side entrance",
		PlaceName:   "Central Station",
		Latitude:    12.92,
		Longitude:   77.55,
		SubmittedBy: "user-1",
		DisplayName: "Asha",
	}
}

func TestSubmitReport(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		mock.ExpectQuery("SELECT is_blocked, blocked_reason FROM users WHERE id = (.+)").
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"is_blocked", "blocked_reason"}))
		mock.ExpectExec("INSERT INTO reports (.+)").
			WithArgs(sqlmock.AnyArg(), models.CategoryRamp, "No ramp at the side entrance", "",
				"Central Station", 12.92, 77.55, "user-1", false, "Asha", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		report, err := s.SubmitReport(context.Background(), submitRequest())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if report.ID == "" {
			t.Error("Expected a generated report id")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestSubmitReportBlockedUser(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		mock.ExpectQuery("SELECT is_blocked, blocked_reason FROM users WHERE id = (.+)").
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"is_blocked", "blocked_reason"}).
				AddRow(true, "marked as spammer by 2 organizations"))

		_, err := s.SubmitReport(context.Background(), submitRequest())
		if apperr.KindOf(err) != apperr.KindSpamBlocked {
			t.Fatalf("Expected spam_blocked error, got %v", err)
		}
		var e *apperr.Error
		if !errors.As(err, &e) || e.SpamReason != "marked as spammer by 2 organizations" {
			t.Errorf("Expected the suspension reason on the error, got %v", err)
		}
		// No insert was expected; a write would fail ExpectationsWereMet.
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestSubmitReportValidation(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		testCases := []struct {
			name   string
			mutate func(*models.SubmitReportRequest)
		}{
			{name: "Invalid category", mutate: func(r *models.SubmitReportRequest) { r.Category = "escalator" }},
			{name: "Missing submitter", mutate: func(r *models.SubmitReportRequest) { r.SubmittedBy = "" }},
			{name: "Latitude out of range", mutate: func(r *models.SubmitReportRequest) { r.Latitude = 95 }},
			{name: "Longitude out of range", mutate: func(r *models.SubmitReportRequest) { r.Longitude = -181 }},
		}

		for _, testCase := range testCases {
			req := submitRequest()
			testCase.mutate(req)
			_, err := s.SubmitReport(context.Background(), req)
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Errorf("%s: expected validation error, got %v", testCase.name, err)
			}
		}
		// Rejections must not touch the store at all.
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestSubmitReportByOrgSkipsUserGuard(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		req := submitRequest()
		req.SubmittedBy = "ngo-a"
		req.AsOrg = true

		mock.ExpectExec("INSERT INTO reports (.+)").
			WithArgs(sqlmock.AnyArg(), models.CategoryRamp, "No ramp at the side entrance", "",
				"Central Station", 12.92, 77.55, "ngo-a", true, "Asha", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		if _, err := s.SubmitReport(context.Background(), req); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestDeleteReportSelfOnly(t *testing.T) {
	it(func() {
		testCases := []struct {
			name       string
			requester  string
			expectKind apperr.Kind
		}{
			{name: "Submitter deletes", requester: "user-1", expectKind: apperr.KindUnknown},
			{name: "Someone else deletes", requester: "user-2", expectKind: apperr.KindAuthorization},
		}

		for _, testCase := range testCases {
			setUp()
			s := NewReportService(db)

			mock.ExpectBegin()
			mock.ExpectQuery("SELECT submitted_by FROM reports WHERE id = (.+)").
				WithArgs("report-1").
				WillReturnRows(sqlmock.NewRows([]string{"submitted_by"}).AddRow("user-1"))
			if testCase.expectKind == apperr.KindUnknown {
				for i := 0; i < 7; i++ {
					mock.ExpectExec("DELETE FROM (.+)").
						WithArgs("report-1").
						WillReturnResult(sqlmock.NewResult(0, 1))
				}
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			err := s.DeleteReport(context.Background(), "report-1", testCase.requester)
			if apperr.KindOf(err) != testCase.expectKind {
				t.Errorf("%s: expected kind %v, got %v", testCase.name, testCase.expectKind, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("%s: %v", testCase.name, err)
			}
		}
	})
}

func TestDeleteReportMissing(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT submitted_by FROM reports WHERE id = (.+)").
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows([]string{"submitted_by"}))
		mock.ExpectRollback()

		err := s.DeleteReport(context.Background(), "nope", "user-1")
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("Expected not_found error, got %v", err)
		}
	})
}

func TestSetOfficialResponseUpsert(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		expectReportExists("report-1", true)
		mock.ExpectExec(`INSERT INTO official_responses \(report_id, org_id, org_name, text, responded_at\) VALUES \((.+)\) ON DUPLICATE KEY UPDATE (.+)`).
			WithArgs("report-1", "ngo-a", "Access For All", "Ramp installed", sqlmock.AnyArg(),
				"ngo-a", "Access For All", "Ramp installed", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := s.SetOfficialResponse(context.Background(), "report-1", "ngo-a", "Access For All", "Ramp installed"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestSetTrustToggle(t *testing.T) {
	it(func() {
		testCases := []struct {
			name    string
			trusted bool
			stmt    string
		}{
			{name: "Trust", trusted: true, stmt: "INSERT IGNORE INTO report_trust (.+)"},
			{name: "Untrust", trusted: false, stmt: "DELETE FROM report_trust WHERE report_id = (.+) AND user_id = (.+)"},
		}

		for _, testCase := range testCases {
			setUp()
			s := NewReportService(db)

			expectReportExists("report-1", true)
			mock.ExpectExec(testCase.stmt).
				WithArgs("report-1", "user-1").
				WillReturnResult(sqlmock.NewResult(0, 1))

			if err := s.SetTrust(context.Background(), "report-1", "user-1", testCase.trusted); err != nil {
				t.Errorf("%s: unexpected error: %v", testCase.name, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("%s: %v", testCase.name, err)
			}
		}
	})
}

func TestListReportsAttachesModeration(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		reportCols := []string{"id", "category", "description", "media_url", "place_name",
			"latitude", "longitude", "submitted_by", "submitted_by_org", "display_name", "created_at"}
		mock.ExpectQuery("SELECT (.+) FROM reports ORDER BY created_at, id").
			WillReturnRows(sqlmock.NewRows(reportCols).
				AddRow("r1", "ramp", "No ramp", nil, "Central Station", 12.92, 77.55, "user-1", false, "Asha", testTime()).
				AddRow("r2", "elevator", nil, nil, nil, 12.93, 77.56, "ngo-a", true, "Access For All", testTime()))
		mock.ExpectQuery("SELECT report_id, org_id, verified_at FROM report_verifications").
			WillReturnRows(sqlmock.NewRows([]string{"report_id", "org_id", "verified_at"}).
				AddRow("r1", "ngo-a", testTime()).
				AddRow("r1", "ngo-b", testTime()))
		mock.ExpectQuery("SELECT report_id, org_id, reason, marked_at FROM report_spam_marks").
			WillReturnRows(sqlmock.NewRows([]string{"report_id", "org_id", "reason", "marked_at"}).
				AddRow("r2", "ngo-c", "duplicate", testTime()))
		mock.ExpectQuery("SELECT report_id, user_id FROM report_trust").
			WillReturnRows(sqlmock.NewRows([]string{"report_id", "user_id"}).
				AddRow("r1", "user-2"))
		mock.ExpectQuery("SELECT (.+) FROM report_comments ORDER BY created_at, id").
			WillReturnRows(sqlmock.NewRows([]string{"id", "report_id", "author_id", "author", "text", "created_at"}).
				AddRow("c1", "r1", "user-2", "Ben", "Confirmed, no ramp", testTime()))
		mock.ExpectQuery("SELECT comment_id, user_id FROM comment_likes").
			WillReturnRows(sqlmock.NewRows([]string{"comment_id", "user_id"}).
				AddRow("c1", "user-3"))
		mock.ExpectQuery("SELECT (.+) FROM official_responses").
			WillReturnRows(sqlmock.NewRows([]string{"report_id", "org_id", "org_name", "text", "responded_at"}).
				AddRow("r1", "ngo-a", "Access For All", "Ramp planned", testTime()))

		reports, err := s.ListReports(context.Background())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(reports) != 2 {
			t.Fatalf("Expected 2 reports, got %d", len(reports))
		}

		r1 := reports[0]
		if r1.VerifiedCount() != 2 {
			t.Errorf("Expected 2 verifications on r1, got %d", r1.VerifiedCount())
		}
		if _, ok := r1.Verifications["ngo-b"]; !ok {
			t.Error("Expected ngo-b verification on r1")
		}
		if len(r1.TrustedBy) != 1 || r1.TrustedBy[0] != "user-2" {
			t.Errorf("Expected r1 trusted by user-2, got %v", r1.TrustedBy)
		}
		if len(r1.Comments) != 1 || len(r1.Comments[0].LikedBy) != 1 {
			t.Errorf("Expected one comment with one like on r1, got %v", r1.Comments)
		}
		if r1.OfficialResponse == nil || r1.OfficialResponse.OrgID != "ngo-a" {
			t.Errorf("Expected official response from ngo-a on r1, got %v", r1.OfficialResponse)
		}

		r2 := reports[1]
		if r2.SpamCount() != 1 || r2.SpamMarks["ngo-c"].Reason != "duplicate" {
			t.Errorf("Expected one spam mark with reason on r2, got %v", r2.SpamMarks)
		}
		if r2.OfficialResponse != nil {
			t.Error("Expected no official response on r2")
		}
	})
}
