package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/db"
)

// Service owns the billing ledger. Every multi-row mutation (bill + total,
// payment + status recompute) runs inside one transaction so the stored
// status never diverges from the recorded payments.
type Service struct {
	bills    BillRepository
	payments PaymentRepository
	uow      db.UnitOfWork
}

func NewService(bills BillRepository, payments PaymentRepository, uow db.UnitOfWork) *Service {
	return &Service{bills: bills, payments: payments, uow: uow}
}

func (s *Service) validateCharges(b *Bill) error {
	if b.PatientID == uuid.Nil {
		return fmt.Errorf("patient is required")
	}
	if b.DoctorFee < 0 || b.RoomCharge < 0 || b.MedicineCharge < 0 || b.OtherCharge < 0 {
		return fmt.Errorf("fee components cannot be negative")
	}
	return nil
}

// CreateBill computes the total from the four fee components, ignoring any
// client-sent total, and assigns the next bill number. A zero-total bill is
// created Paid: there is nothing to collect.
func (s *Service) CreateBill(ctx context.Context, b *Bill) error {
	if err := s.validateCharges(b); err != nil {
		return err
	}
	if b.BillDate.IsZero() {
		b.BillDate = time.Now()
	}
	b.TotalAmount = b.DoctorFee + b.RoomCharge + b.MedicineCharge + b.OtherCharge
	b.Status = DeriveStatus(b.TotalAmount, 0)

	return s.uow(ctx, func(ctx context.Context) error {
		ok, err := s.bills.PatientExists(ctx, b.PatientID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("patient not found")
		}
		no, err := s.bills.NextBillNo(ctx)
		if err != nil {
			return fmt.Errorf("allocate bill number: %w", err)
		}
		b.BillNo = no
		return s.bills.Create(ctx, b)
	})
}

// GetBill returns the bill with paid and pending amounts filled in.
func (s *Service) GetBill(ctx context.Context, id uuid.UUID) (*Bill, error) {
	b, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	paid, err := s.payments.SumByBill(ctx, id)
	if err != nil {
		return nil, err
	}
	b.PaidAmount = paid
	b.PendingAmount = b.TotalAmount - paid
	return b, nil
}

// UpdateBill edits the fee components and recomputes total and status. The
// new total may not fall below what has already been collected, otherwise
// the payments-never-exceed-total invariant would break retroactively.
func (s *Service) UpdateBill(ctx context.Context, b *Bill) error {
	if err := s.validateCharges(b); err != nil {
		return err
	}
	return s.uow(ctx, func(ctx context.Context) error {
		existing, err := s.bills.GetByID(ctx, b.ID)
		if err != nil {
			return fmt.Errorf("bill not found: %w", err)
		}
		paid, err := s.payments.SumByBill(ctx, b.ID)
		if err != nil {
			return err
		}
		newTotal := b.DoctorFee + b.RoomCharge + b.MedicineCharge + b.OtherCharge
		if newTotal < paid {
			return fmt.Errorf("total %.2f cannot fall below amount already paid %.2f", newTotal, paid)
		}
		b.BillNo = existing.BillNo
		b.PatientID = existing.PatientID
		if b.BillDate.IsZero() {
			b.BillDate = existing.BillDate
		}
		b.TotalAmount = newTotal
		b.Status = DeriveStatus(newTotal, paid)
		if err := s.bills.Update(ctx, b); err != nil {
			return err
		}
		b.PaidAmount = paid
		b.PendingAmount = newTotal - paid
		return nil
	})
}

// DeleteBill removes a bill that has no payments recorded against it.
func (s *Service) DeleteBill(ctx context.Context, id uuid.UUID) error {
	return s.uow(ctx, func(ctx context.Context) error {
		if _, err := s.bills.GetByID(ctx, id); err != nil {
			return fmt.Errorf("bill not found: %w", err)
		}
		n, err := s.payments.CountByBill(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("bill has %d payment(s); delete them first", n)
		}
		return s.bills.Delete(ctx, id)
	})
}

func (s *Service) ListBills(ctx context.Context, f BillFilter, limit, offset int) ([]*Bill, int, error) {
	if f.Status != "" && f.Status != StatusPending && f.Status != StatusPartial && f.Status != StatusPaid {
		return nil, 0, fmt.Errorf("invalid status: %s", f.Status)
	}
	bills, total, err := s.bills.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, b := range bills {
		paid, err := s.payments.SumByBill(ctx, b.ID)
		if err != nil {
			return nil, 0, err
		}
		b.PaidAmount = paid
		b.PendingAmount = b.TotalAmount - paid
	}
	return bills, total, nil
}

// AddPayment records a settlement against a bill and recomputes the status
// in the same transaction. A payment is rejected when the amount is not
// positive, exceeds the pending balance, uses an unknown method, or the
// bill is already settled.
func (s *Service) AddPayment(ctx context.Context, p *Payment) error {
	if p.Amount <= 0 {
		return fmt.Errorf("payment amount must be positive")
	}
	if !validPaymentMethods[p.Method] {
		return fmt.Errorf("invalid payment method: %s", p.Method)
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now()
	}
	return s.uow(ctx, func(ctx context.Context) error {
		b, err := s.bills.GetByID(ctx, p.BillID)
		if err != nil {
			return fmt.Errorf("bill not found: %w", err)
		}
		paid, err := s.payments.SumByBill(ctx, p.BillID)
		if err != nil {
			return err
		}
		if DeriveStatus(b.TotalAmount, paid) == StatusPaid {
			return fmt.Errorf("bill is already paid")
		}
		pending := b.TotalAmount - paid
		if p.Amount > pending {
			return fmt.Errorf("payment %.2f exceeds pending amount %.2f", p.Amount, pending)
		}
		if err := s.payments.Create(ctx, p); err != nil {
			return err
		}
		return s.recompute(ctx, b)
	})
}

// DeletePayment voids a recorded payment and recomputes the bill status.
func (s *Service) DeletePayment(ctx context.Context, id uuid.UUID) error {
	return s.uow(ctx, func(ctx context.Context) error {
		p, err := s.payments.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("payment not found: %w", err)
		}
		if err := s.payments.Delete(ctx, id); err != nil {
			return err
		}
		b, err := s.bills.GetByID(ctx, p.BillID)
		if err != nil {
			return err
		}
		return s.recompute(ctx, b)
	})
}

func (s *Service) ListPayments(ctx context.Context, billID uuid.UUID) ([]*Payment, error) {
	return s.payments.ListByBill(ctx, billID)
}

// RecomputeStatus re-derives and persists the status for one bill. It is
// idempotent: with no new payments the status never changes.
func (s *Service) RecomputeStatus(ctx context.Context, billID uuid.UUID) (string, error) {
	var status string
	err := s.uow(ctx, func(ctx context.Context) error {
		b, err := s.bills.GetByID(ctx, billID)
		if err != nil {
			return fmt.Errorf("bill not found: %w", err)
		}
		if err := s.recompute(ctx, b); err != nil {
			return err
		}
		status = b.Status
		return nil
	})
	return status, err
}

func (s *Service) recompute(ctx context.Context, b *Bill) error {
	paid, err := s.payments.SumByBill(ctx, b.ID)
	if err != nil {
		return err
	}
	status := DeriveStatus(b.TotalAmount, paid)
	if status == b.Status {
		return nil
	}
	b.Status = status
	return s.bills.UpdateStatus(ctx, b.ID, status)
}

// GetSummary aggregates ledger totals. The collection rate is zero when
// nothing has been billed.
func (s *Service) GetSummary(ctx context.Context) (*Summary, error) {
	sum, err := s.bills.Summary(ctx)
	if err != nil {
		return nil, err
	}
	sum.TotalPending = sum.TotalBilled - sum.TotalCollected
	if sum.TotalBilled > 0 {
		sum.CollectionRate = sum.TotalCollected / sum.TotalBilled * 100
	}
	return sum, nil
}
