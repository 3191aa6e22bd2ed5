package billing

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending = "Pending"
	StatusPartial = "Partial"
	StatusPaid    = "Paid"
)

// Bill charges a patient for a visit. TotalAmount is always the sum of the
// four fee components and is computed server-side. Status is derived from
// the payments recorded against the bill; the stored column is a cache that
// DeriveStatus keeps authoritative.
type Bill struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	BillNo         string     `db:"bill_no" json:"bill_no"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	AdmissionID    *uuid.UUID `db:"admission_id" json:"admission_id,omitempty"`
	DoctorFee      float64    `db:"doctor_fee" json:"doctor_fee"`
	RoomCharge     float64    `db:"room_charge" json:"room_charge"`
	MedicineCharge float64    `db:"medicine_charge" json:"medicine_charge"`
	OtherCharge    float64    `db:"other_charge" json:"other_charge"`
	TotalAmount    float64    `db:"total_amount" json:"total_amount"`
	Status         string     `db:"status" json:"status"`
	BillDate       time.Time  `db:"bill_date" json:"bill_date"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`

	// PaidAmount and PendingAmount are filled on read, never stored.
	PaidAmount    float64 `db:"-" json:"paid_amount"`
	PendingAmount float64 `db:"-" json:"pending_amount"`
}

type Payment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	BillID        uuid.UUID `db:"bill_id" json:"bill_id"`
	Amount        float64   `db:"amount" json:"amount"`
	Method        string    `db:"method" json:"method"`
	TransactionID *string   `db:"transaction_id" json:"transaction_id,omitempty"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	PaymentDate   time.Time `db:"payment_date" json:"payment_date"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Summary aggregates the ledger for the dashboard.
type Summary struct {
	TotalBills     int     `json:"total_bills"`
	TotalBilled    float64 `json:"total_billed"`
	TotalCollected float64 `json:"total_collected"`
	TotalPending   float64 `json:"total_pending"`
	CollectionRate float64 `json:"collection_rate"`
	PendingBills   int     `json:"pending_bills"`
	PartialBills   int     `json:"partial_bills"`
	PaidBills      int     `json:"paid_bills"`
}

var validPaymentMethods = map[string]bool{
	"Cash":          true,
	"Card":          true,
	"UPI":           true,
	"Bank Transfer": true,
	"Cheque":        true,
}

// DeriveStatus is the single source of truth for a bill's payment status.
// A zero-total bill has nothing to collect and is therefore Paid.
func DeriveStatus(totalAmount, paidAmount float64) string {
	switch {
	case paidAmount >= totalAmount:
		return StatusPaid
	case paidAmount > 0:
		return StatusPartial
	default:
		return StatusPending
	}
}
