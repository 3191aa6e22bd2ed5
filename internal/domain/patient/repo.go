package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository abstracts patient persistence.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByPatientNo(ctx context.Context, patientNo string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error)
	NextPatientNo(ctx context.Context) (string, error)
}
