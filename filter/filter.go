// Package filter evaluates persisted rule sets against canonical models.
package filter

import "time"

// Visibility controls who besides the owner may read and run a filter.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityTeam    Visibility = "team"
	VisibilityPublic  Visibility = "public"
)

// Filter is a named, reusable, ordered rule set.
type Filter struct {
	ID          string       `json:"id" yaml:"id"`
	OwnerID     string       `json:"ownerId" yaml:"ownerId" validate:"required"`
	TeamID      string       `json:"teamId,omitempty" yaml:"teamId,omitempty" validate:"required_if=Visibility team"`
	Name        string       `json:"name" yaml:"name" validate:"required,max=200"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty" validate:"max=2000"`
	Visibility  Visibility   `json:"visibility" yaml:"visibility" validate:"oneof=private team public"`
	Rules       []RuleClause `json:"rules" yaml:"rules" validate:"required,min=1,dive"`
	Version     int          `json:"version" yaml:"version"`
	UsageCount  int64        `json:"usageCount" yaml:"usageCount"`
	LastUsedAt  *time.Time   `json:"lastUsedAt,omitempty" yaml:"lastUsedAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" yaml:"updatedAt"`
}

// VisibleTo reports whether a user, optionally acting within a team, may
// read the filter.
func (f Filter) VisibleTo(userID, teamID string) bool {
	switch {
	case f.OwnerID == userID:
		return true
	case f.Visibility == VisibilityPublic:
		return true
	case f.Visibility == VisibilityTeam:
		return teamID != "" && f.TeamID == teamID
	}
	return false
}
