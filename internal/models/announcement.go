package models

import "time"

// Announcement is a notice shown on the portal.
type Announcement struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Content    string    `db:"content" json:"content"`
	PostedBy   string    `db:"posted_by" json:"postedBy"`
	Date       time.Time `db:"date" json:"date"`
	TargetRole string    `db:"target_role" json:"targetRole"`
}

// AudienceAll targets every role.
const AudienceAll = "all"
