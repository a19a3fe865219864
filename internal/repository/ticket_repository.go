package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-portal-api/internal/models"
)

// TicketRepository persists IT support tickets.
type TicketRepository struct {
	db *sqlx.DB
}

// NewTicketRepository constructs the repository.
func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Create submits a ticket.
func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	if ticket.Status == "" {
		ticket.Status = models.TicketOpen
	}
	if ticket.Date.IsZero() {
		ticket.Date = time.Now().UTC()
	}
	const query = `INSERT INTO tickets (id, submitted_by, submitted_role, title, description, status, date)
        VALUES (:id, :submitted_by, :submitted_role, :title, :description, :status, :date)`
	if _, err := r.db.NamedExecContext(ctx, query, ticket); err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

// ListOpen returns tickets that are not closed, newest first.
func (r *TicketRepository) ListOpen(ctx context.Context) ([]models.Ticket, error) {
	const query = `SELECT id, submitted_by, submitted_role, title, description, status, date FROM tickets
        WHERE status <> $1 ORDER BY date DESC`
	var tickets []models.Ticket
	if err := r.db.SelectContext(ctx, &tickets, query, models.TicketClosed); err != nil {
		return nil, fmt.Errorf("list open tickets: %w", err)
	}
	return tickets, nil
}

// UpdateStatus changes a ticket's status and returns the updated row.
func (r *TicketRepository) UpdateStatus(ctx context.Context, id string, status models.TicketStatus) (*models.Ticket, error) {
	const query = `UPDATE tickets SET status = $2 WHERE id = $1
        RETURNING id, submitted_by, submitted_role, title, description, status, date`
	var ticket models.Ticket
	if err := r.db.GetContext(ctx, &ticket, query, id, status); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update ticket status: %w", err)
	}
	return &ticket, nil
}
