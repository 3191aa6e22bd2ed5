package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type BillRepository interface {
	Create(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	Update(ctx context.Context, b *Bill) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f BillFilter, limit, offset int) ([]*Bill, int, error)
	NextBillNo(ctx context.Context) (string, error)
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
	Summary(ctx context.Context) (*Summary, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByBill(ctx context.Context, billID uuid.UUID) ([]*Payment, error)
	SumByBill(ctx context.Context, billID uuid.UUID) (float64, error)
	CountByBill(ctx context.Context, billID uuid.UUID) (int, error)
}

type BillFilter struct {
	Status    string
	PatientID uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
}
