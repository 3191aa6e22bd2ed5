package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// Stock alert levels.
const (
	StockNormal     = "Normal"
	StockLow        = "Low Stock"
	StockOutOfStock = "Out of Stock"
)

// Expiry alert levels.
const (
	ExpiryNormal   = "Normal"
	ExpiryWarning  = "Warning"
	ExpiryCritical = "Critical"
	ExpiryExpired  = "Expired"
)

// Medicine is an inventory item. Quantity is current stock and never goes
// negative; MinQuantity is the reorder threshold.
type Medicine struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Category    *string    `db:"category" json:"category,omitempty"`
	Price       float64    `db:"price" json:"price"`
	Quantity    int        `db:"quantity" json:"quantity"`
	MinQuantity int        `db:"min_quantity" json:"min_quantity"`
	ExpiryDate  *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	Supplier    *string    `db:"supplier" json:"supplier,omitempty"`
	BatchNo     *string    `db:"batch_no" json:"batch_no,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`

	// Alert fields are classified on read, never stored.
	StockAlert  string `db:"-" json:"stock_alert,omitempty"`
	ExpiryAlert string `db:"-" json:"expiry_alert,omitempty"`
}

type Sale struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	MedicineID     uuid.UUID  `db:"medicine_id" json:"medicine_id"`
	PatientID      *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	Quantity       int        `db:"quantity" json:"quantity"`
	UnitPrice      float64    `db:"unit_price" json:"unit_price"`
	TotalAmount    float64    `db:"total_amount" json:"total_amount"`
	PrescriptionNo *string    `db:"prescription_no" json:"prescription_no,omitempty"`
	SaleDate       time.Time  `db:"sale_date" json:"sale_date"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

type Purchase struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	MedicineID  uuid.UUID  `db:"medicine_id" json:"medicine_id"`
	Supplier    string     `db:"supplier" json:"supplier"`
	Quantity    int        `db:"quantity" json:"quantity"`
	UnitPrice   float64    `db:"unit_price" json:"unit_price"`
	TotalAmount float64    `db:"total_amount" json:"total_amount"`
	BatchNo     *string    `db:"batch_no" json:"batch_no,omitempty"`
	ExpiryDate  *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	InvoiceNo   *string    `db:"invoice_no" json:"invoice_no,omitempty"`
	PurchaseDate time.Time `db:"purchase_date" json:"purchase_date"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// ClassifyStock grades current stock against the reorder threshold.
func ClassifyStock(quantity, minQuantity int) string {
	switch {
	case quantity == 0:
		return StockOutOfStock
	case quantity <= minQuantity:
		return StockLow
	default:
		return StockNormal
	}
}

// ClassifyExpiry grades an expiry date against today. Dates are compared at
// day granularity; a medicine expiring today is Critical, not Expired. A nil
// expiry date is Normal.
func ClassifyExpiry(expiry *time.Time, today time.Time, warningDays, criticalDays int) string {
	if expiry == nil {
		return ExpiryNormal
	}
	e := expiry.Truncate(24 * time.Hour)
	t := today.Truncate(24 * time.Hour)
	days := int(e.Sub(t).Hours() / 24)
	switch {
	case days < 0:
		return ExpiryExpired
	case days <= criticalDays:
		return ExpiryCritical
	case days <= warningDays:
		return ExpiryWarning
	default:
		return ExpiryNormal
	}
}
