package admission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/db"
)

type Service struct {
	repo Repository
	uow  db.UnitOfWork
}

func NewService(repo Repository, uow db.UnitOfWork) *Service {
	return &Service{repo: repo, uow: uow}
}

// Admit opens a stay for a patient. A patient can hold at most one active
// admission, so the existence check and the insert run in one transaction.
func (s *Service) Admit(ctx context.Context, a *Admission) error {
	a.Ward = strings.TrimSpace(a.Ward)
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient is required")
	}
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor is required")
	}
	if a.Ward == "" {
		return fmt.Errorf("ward is required")
	}
	if a.AdmitDate.IsZero() {
		a.AdmitDate = time.Now()
	}
	a.Status = StatusAdmitted
	a.DischargeDate = nil

	return s.uow(ctx, func(ctx context.Context) error {
		ok, err := s.repo.PatientExists(ctx, a.PatientID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("patient not found")
		}
		ok, err = s.repo.DoctorExists(ctx, a.DoctorID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("doctor not found")
		}
		active, err := s.repo.HasActiveAdmission(ctx, a.PatientID)
		if err != nil {
			return err
		}
		if active {
			return fmt.Errorf("patient already has an active admission")
		}
		return s.repo.Create(ctx, a)
	})
}

// Discharge closes an active stay. The discharge date defaults to now and may
// not precede the admit date.
func (s *Service) Discharge(ctx context.Context, id uuid.UUID, dischargeDate *time.Time) (*Admission, error) {
	var out *Admission
	err := s.uow(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("admission not found: %w", err)
		}
		if a.Status != StatusAdmitted {
			return fmt.Errorf("admission is already discharged")
		}
		when := time.Now()
		if dischargeDate != nil {
			when = *dischargeDate
		}
		if when.Before(a.AdmitDate) {
			return fmt.Errorf("discharge date cannot precede admit date")
		}
		a.Status = StatusDischarged
		a.DischargeDate = &when
		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return s.repo.GetByID(ctx, id)
}

// Update edits stay details. Status and dates move only through Admit and
// Discharge, so incoming values for those fields are ignored.
func (s *Service) Update(ctx context.Context, a *Admission) error {
	a.Ward = strings.TrimSpace(a.Ward)
	if a.Ward == "" {
		return fmt.Errorf("ward is required")
	}
	existing, err := s.repo.GetByID(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("admission not found: %w", err)
	}
	if a.DoctorID == uuid.Nil {
		a.DoctorID = existing.DoctorID
	}
	a.PatientID = existing.PatientID
	a.Status = existing.Status
	a.AdmitDate = existing.AdmitDate
	a.DischargeDate = existing.DischargeDate
	return s.repo.Update(ctx, a)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("admission not found: %w", err)
	}
	if a.Status == StatusAdmitted {
		return fmt.Errorf("cannot delete an active admission; discharge first")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Admission, int, error) {
	if f.Status != "" && f.Status != StatusAdmitted && f.Status != StatusDischarged {
		return nil, 0, fmt.Errorf("invalid status: %s", f.Status)
	}
	return s.repo.List(ctx, f, limit, offset)
}
