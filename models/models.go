package models

import (
	"time"

	geojson "github.com/paulmach/go.geojson"

	"accessmap/geo"
)

// Report categories accepted on submission.
const (
	CategoryRamp     = "ramp"
	CategoryElevator = "elevator"
	CategoryRestroom = "restroom"
	CategoryParking  = "parking"
	CategoryEntrance = "entrance"
	CategoryPathway  = "pathway"
	CategoryOther    = "other"
)

var validCategories = map[string]bool{
	CategoryRamp:     true,
	CategoryElevator: true,
	CategoryRestroom: true,
	CategoryParking:  true,
	CategoryEntrance: true,
	CategoryPathway:  true,
	CategoryOther:    true,
}

func IsValidCategory(category string) bool {
	return validCategories[category]
}

// Verification is one organization's "looks legitimate" opinion on a report.
type Verification struct {
	OrgID      string    `json:"org_id"`
	VerifiedAt time.Time `json:"verified_at"`
}

// SpamMark is one organization's spam opinion on a report or a user.
type SpamMark struct {
	OrgID    string    `json:"org_id"`
	Reason   string    `json:"reason,omitempty"`
	MarkedAt time.Time `json:"marked_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	LikedBy   []string  `json:"liked_by"`
}

type OfficialResponse struct {
	OrgID       string    `json:"org_id"`
	OrgName     string    `json:"org_name"`
	Text        string    `json:"text"`
	RespondedAt time.Time `json:"responded_at"`
}

// Report is an accessibility observation at a geographic point. Moderation
// sub-state is keyed by organization id; at most one verification and one
// spam mark exist per organization.
type Report struct {
	ID             string  `json:"id"`
	Category       string  `json:"category"`
	Description    string  `json:"description"`
	MediaURL       string  `json:"media_url,omitempty"`
	PlaceName      string  `json:"place_name,omitempty"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	SubmittedBy    string  `json:"submitted_by"`
	SubmittedByOrg bool    `json:"submitted_by_org"`
	DisplayName    string  `json:"display_name"`

	CreatedAt time.Time `json:"created_at"`

	Verifications    map[string]Verification `json:"verifications,omitempty"`
	SpamMarks        map[string]SpamMark     `json:"spam_marks,omitempty"`
	TrustedBy        []string                `json:"trusted_by,omitempty"`
	Comments         []Comment               `json:"comments,omitempty"`
	OfficialResponse *OfficialResponse       `json:"official_response,omitempty"`
}

func (r *Report) VerifiedCount() int {
	return len(r.Verifications)
}

func (r *Report) SpamCount() int {
	return len(r.SpamMarks)
}

// Point converts the stored (latitude, longitude) fields into the canonical
// ordering. Every persisted report carries coordinates; false only flags
// non-numeric values.
func (r *Report) Point() (geo.Point, bool) {
	p := geo.PointFromLatLng(r.Latitude, r.Longitude)
	return p, p.Valid()
}

// Zone is a polygonal area of responsibility owned by exactly one
// organization. Only the owner may update or delete it.
type Zone struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	OwnerOrgID string    `json:"owner_org_id"`
	Ring       geo.Ring  `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// Feature renders the zone boundary for the wire.
func (z *Zone) Feature() *geojson.Feature {
	return z.Ring.ToFeature()
}

// UserStatus is the moderation side-record of an end-user account. IsBlocked
// is always derived from the spam marks against the configured threshold,
// never set directly.
type UserStatus struct {
	UserID        string              `json:"user_id"`
	SpamMarks     map[string]SpamMark `json:"spam_marks,omitempty"`
	IsBlocked     bool                `json:"is_blocked"`
	BlockedReason string              `json:"blocked_reason,omitempty"`
}
