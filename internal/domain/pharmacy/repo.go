package pharmacy

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MedicineRepository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f MedicineFilter, limit, offset int) ([]*Medicine, int, error)
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) error
	ListLowStock(ctx context.Context) ([]*Medicine, error)
	ListExpiringBy(ctx context.Context, cutoff time.Time) ([]*Medicine, error)
}

type SaleRepository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	Update(ctx context.Context, s *Sale) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, medicineID uuid.UUID, limit, offset int) ([]*Sale, int, error)
	CountByMedicine(ctx context.Context, medicineID uuid.UUID) (int, error)
}

type PurchaseRepository interface {
	Create(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, id uuid.UUID) (*Purchase, error)
	Update(ctx context.Context, p *Purchase) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, medicineID uuid.UUID, limit, offset int) ([]*Purchase, int, error)
	CountByMedicine(ctx context.Context, medicineID uuid.UUID) (int, error)
}

type MedicineFilter struct {
	Search   string
	Category string
}
