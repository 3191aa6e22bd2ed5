package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/db"
)

var validGenders = map[string]bool{
	"Male":   true,
	"Female": true,
	"Other":  true,
}

var validBloodGroups = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}

// Service implements patient registration and record upkeep.
type Service struct {
	repo Repository
	uow  db.UnitOfWork
}

func NewService(repo Repository, uow db.UnitOfWork) *Service {
	return &Service{repo: repo, uow: uow}
}

func (s *Service) validate(p *Patient) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Gender != nil && *p.Gender != "" && !validGenders[*p.Gender] {
		return fmt.Errorf("invalid gender: %s", *p.Gender)
	}
	if p.BloodGroup != nil && *p.BloodGroup != "" && !validBloodGroups[*p.BloodGroup] {
		return fmt.Errorf("invalid blood group: %s", *p.BloodGroup)
	}
	return nil
}

// Register assigns the next record number and stores the patient. Both steps
// run in one transaction so a failed insert does not burn the number visibly
// out of order with a concurrent registration.
func (s *Service) Register(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	return s.uow(ctx, func(ctx context.Context) error {
		no, err := s.repo.NextPatientNo(ctx)
		if err != nil {
			return fmt.Errorf("allocate patient number: %w", err)
		}
		p.PatientNo = no
		return s.repo.Create(ctx, p)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByPatientNo(ctx context.Context, patientNo string) (*Patient, error) {
	return s.repo.GetByPatientNo(ctx, patientNo)
}

// Update edits demographics. The patient number is immutable: whatever the
// caller sends, the stored number wins.
func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("patient not found: %w", err)
	}
	p.PatientNo = existing.PatientNo
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("patient not found: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, strings.TrimSpace(search), limit, offset)
}
