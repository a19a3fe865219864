package models

import "time"

// TicketStatus tracks a support ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "Open"
	TicketInProgress TicketStatus = "In Progress"
	TicketClosed     TicketStatus = "Closed"
)

// Ticket is an IT support request.
type Ticket struct {
	ID            string       `db:"id" json:"id"`
	SubmittedBy   string       `db:"submitted_by" json:"submittedBy"`
	SubmittedRole UserRole     `db:"submitted_role" json:"submittedRole"`
	Title         string       `db:"title" json:"title"`
	Description   string       `db:"description" json:"description"`
	Status        TicketStatus `db:"status" json:"status"`
	Date          time.Time    `db:"date" json:"date"`
}
