package models

import (
	geojson "github.com/paulmach/go.geojson"
)

// Wire types for the /api/v3 endpoints.

type SubmitReportRequest struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	MediaURL    string  `json:"media_url"`
	PlaceName   string  `json:"place_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	SubmittedBy string  `json:"submitted_by"`
	AsOrg       bool    `json:"as_org"`
	DisplayName string  `json:"display_name"`
}

type SubmitReportResponse struct {
	ReportID string `json:"report_id"`
}

type DeleteReportRequest struct {
	ReportID    string `json:"report_id"`
	RequesterID string `json:"requester_id"`
}

type AddCommentRequest struct {
	ReportID string `json:"report_id"`
	AuthorID string `json:"author_id"`
	Author   string `json:"author"`
	Text     string `json:"text"`
}

type AddCommentResponse struct {
	CommentID string `json:"comment_id"`
}

type LikeCommentRequest struct {
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id"`
	Liked     bool   `json:"liked"`
}

type SetTrustRequest struct {
	ReportID string `json:"report_id"`
	UserID   string `json:"user_id"`
	Trusted  bool   `json:"trusted"`
}

type SetVerifiedRequest struct {
	ReportID string `json:"report_id"`
	Verified bool   `json:"verified"`
}

type SetSpamRequest struct {
	ReportID string `json:"report_id"`
	Spam     bool   `json:"spam"`
	Reason   string `json:"reason"`
}

type SetUserSpamRequest struct {
	UserID string `json:"user_id"`
	Spam   bool   `json:"spam"`
	Reason string `json:"reason"`
}

type SetOfficialResponseRequest struct {
	ReportID string `json:"report_id"`
	OrgName  string `json:"org_name"`
	Text     string `json:"text"`
}

type RegisterOrgRequest struct {
	OrgID string `json:"org_id"`
	Name  string `json:"name"`
}

type ZonePayload struct {
	ID         uint64           `json:"id,omitempty"`
	Name       string           `json:"name"`
	OwnerOrgID string           `json:"owner_org_id,omitempty"`
	Boundary   *geojson.Feature `json:"boundary"`
	CreatedAt  string           `json:"created_at,omitempty"`
}

type CreateZoneRequest struct {
	Zone *ZonePayload `json:"zone"`
}

type CreateZoneResponse struct {
	ZoneID uint64 `json:"zone_id"`
}

type UpdateZoneRequest struct {
	ZoneID uint64       `json:"zone_id"`
	Zone   *ZonePayload `json:"zone"`
}

type DeleteZoneRequest struct {
	ZoneID uint64 `json:"zone_id"`
}

type ZonesResponse struct {
	Zones []ZonePayload `json:"zones"`
}

type ZonesCountResponse struct {
	Count uint64 `json:"count"`
}

type ReportsResponse struct {
	Reports []Report `json:"reports"`
}

type UserStatusResponse struct {
	Status UserStatus `json:"status"`
}

type ErrorResponse struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	SpamReason string `json:"spam_reason,omitempty"`
}

type ViewPort struct {
	LatMin float64 `json:"latmin"`
	LonMin float64 `json:"lonmin"`
	LatMax float64 `json:"latmax"`
	LonMax float64 `json:"lonmax"`
}
