package models

import "time"

// PaymentStatus is the persisted state of a fee record.
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "Unpaid"
	PaymentPartiallyPaid PaymentStatus = "Partially Paid"
	PaymentFullyPaid     PaymentStatus = "Fully Paid"
	// PaymentNoRecord only ever appears on projected rows.
	PaymentNoRecord PaymentStatus = "No Record"
)

// Fee is a stored fee record. Several may exist per student.
type Fee struct {
	ID            string        `db:"id" json:"id"`
	StudentID     string        `db:"student_id" json:"studentId"`
	AmountDue     float64       `db:"amount_due" json:"amountDue"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`
	DueDate       time.Time     `db:"due_date" json:"dueDate"`
	Semester      string        `db:"semester" json:"semester"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
}

// StudentFeeRow is one row of the student ⟕ fee join; fee columns are nil for students without records.
type StudentFeeRow struct {
	UserID        string         `db:"user_id"`
	StudentID     string         `db:"student_id"`
	StudentName   string         `db:"student_name"`
	FeeID         *string        `db:"fee_id"`
	AmountDue     *float64       `db:"amount_due"`
	PaymentStatus *PaymentStatus `db:"payment_status"`
	DueDate       *time.Time     `db:"due_date"`
	Semester      *string        `db:"semester"`
}

// FeeView is a reporting row, either a stored fee or a synthesized default.
type FeeView struct {
	ID            string        `json:"_id"`
	StudentID     string        `json:"studentId"`
	StudentName   string        `json:"studentName"`
	AmountDue     float64       `json:"amountDue"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	DueDate       time.Time     `json:"dueDate"`
	Semester      string        `json:"semester"`
	Synthetic     bool          `json:"synthetic"`
}
