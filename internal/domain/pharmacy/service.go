package pharmacy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/db"
)

// AlertWindows configures the expiry classification thresholds in days.
type AlertWindows struct {
	WarningDays  int
	CriticalDays int
}

func DefaultAlertWindows() AlertWindows {
	return AlertWindows{WarningDays: 30, CriticalDays: 7}
}

// Service owns the pharmacy inventory. Stock adjustment is strictly
// application-level: every sale or purchase write and its quantity change
// run in one transaction, and nothing else mutates medicine quantity.
type Service struct {
	medicines MedicineRepository
	sales     SaleRepository
	purchases PurchaseRepository
	uow       db.UnitOfWork
	windows   AlertWindows
	now       func() time.Time
}

func NewService(medicines MedicineRepository, sales SaleRepository, purchases PurchaseRepository, uow db.UnitOfWork, windows AlertWindows) *Service {
	return &Service{
		medicines: medicines,
		sales:     sales,
		purchases: purchases,
		uow:       uow,
		windows:   windows,
		now:       time.Now,
	}
}

func (s *Service) classify(m *Medicine) {
	m.StockAlert = ClassifyStock(m.Quantity, m.MinQuantity)
	m.ExpiryAlert = ClassifyExpiry(m.ExpiryDate, s.now(), s.windows.WarningDays, s.windows.CriticalDays)
}

// -- Medicines --

func (s *Service) validateMedicine(m *Medicine) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	if m.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	if m.MinQuantity < 0 {
		return fmt.Errorf("minimum quantity cannot be negative")
	}
	return nil
}

func (s *Service) CreateMedicine(ctx context.Context, m *Medicine) error {
	if err := s.validateMedicine(m); err != nil {
		return err
	}
	if err := s.medicines.Create(ctx, m); err != nil {
		return err
	}
	s.classify(m)
	return nil
}

func (s *Service) GetMedicine(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	m, err := s.medicines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.classify(m)
	return m, nil
}

// UpdateMedicine edits catalogue fields. Quantity moves only through sales
// and purchases, so the incoming value is ignored.
func (s *Service) UpdateMedicine(ctx context.Context, m *Medicine) error {
	if err := s.validateMedicine(m); err != nil {
		return err
	}
	existing, err := s.medicines.GetByID(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("medicine not found: %w", err)
	}
	m.Quantity = existing.Quantity
	if err := s.medicines.Update(ctx, m); err != nil {
		return err
	}
	s.classify(m)
	return nil
}

// DeleteMedicine refuses to remove a medicine with transaction history so
// past sales and purchases keep a valid reference.
func (s *Service) DeleteMedicine(ctx context.Context, id uuid.UUID) error {
	return s.uow(ctx, func(ctx context.Context) error {
		if _, err := s.medicines.GetByID(ctx, id); err != nil {
			return fmt.Errorf("medicine not found: %w", err)
		}
		nSales, err := s.sales.CountByMedicine(ctx, id)
		if err != nil {
			return err
		}
		nPurchases, err := s.purchases.CountByMedicine(ctx, id)
		if err != nil {
			return err
		}
		if nSales > 0 || nPurchases > 0 {
			return fmt.Errorf("medicine has %d sale(s) and %d purchase(s); cannot delete", nSales, nPurchases)
		}
		return s.medicines.Delete(ctx, id)
	})
}

func (s *Service) ListMedicines(ctx context.Context, f MedicineFilter, limit, offset int) ([]*Medicine, int, error) {
	items, total, err := s.medicines.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, m := range items {
		s.classify(m)
	}
	return items, total, nil
}

// StockAlerts lists medicines at or below their reorder threshold.
func (s *Service) StockAlerts(ctx context.Context) ([]*Medicine, error) {
	items, err := s.medicines.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range items {
		s.classify(m)
	}
	return items, nil
}

// ExpiryAlerts lists medicines expired or expiring inside the warning window.
func (s *Service) ExpiryAlerts(ctx context.Context) ([]*Medicine, error) {
	cutoff := s.now().AddDate(0, 0, s.windows.WarningDays)
	items, err := s.medicines.ListExpiringBy(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	for _, m := range items {
		s.classify(m)
	}
	return items, nil
}

// AlertSummary aggregates stock and expiry alert counts for the dashboard.
type AlertSummary struct {
	LowStock   int `json:"low_stock"`
	OutOfStock int `json:"out_of_stock"`
	Expired    int `json:"expired"`
	Critical   int `json:"critical"`
	Warning    int `json:"warning"`
}

func (s *Service) AlertCounts(ctx context.Context) (*AlertSummary, error) {
	sum := &AlertSummary{}

	low, err := s.medicines.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range low {
		if m.Quantity == 0 {
			sum.OutOfStock++
		} else {
			sum.LowStock++
		}
	}

	cutoff := s.now().AddDate(0, 0, s.windows.WarningDays)
	expiring, err := s.medicines.ListExpiringBy(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	for _, m := range expiring {
		switch ClassifyExpiry(m.ExpiryDate, s.now(), s.windows.WarningDays, s.windows.CriticalDays) {
		case ExpiryExpired:
			sum.Expired++
		case ExpiryCritical:
			sum.Critical++
		case ExpiryWarning:
			sum.Warning++
		}
	}
	return sum, nil
}

// -- Sales --

// RecordSale writes the sale row and decrements stock atomically. The sale
// quantity may not exceed current stock.
func (s *Service) RecordSale(ctx context.Context, sale *Sale) error {
	if sale.Quantity <= 0 {
		return fmt.Errorf("sale quantity must be positive")
	}
	if sale.SaleDate.IsZero() {
		sale.SaleDate = s.now()
	}
	return s.uow(ctx, func(ctx context.Context) error {
		m, err := s.medicines.GetByID(ctx, sale.MedicineID)
		if err != nil {
			return fmt.Errorf("medicine not found: %w", err)
		}
		if sale.Quantity > m.Quantity {
			return fmt.Errorf("insufficient stock: have %d, requested %d", m.Quantity, sale.Quantity)
		}
		if sale.UnitPrice == 0 {
			sale.UnitPrice = m.Price
		}
		if sale.UnitPrice < 0 {
			return fmt.Errorf("unit price cannot be negative")
		}
		sale.TotalAmount = float64(sale.Quantity) * sale.UnitPrice
		if err := s.sales.Create(ctx, sale); err != nil {
			return err
		}
		return s.medicines.AdjustQuantity(ctx, sale.MedicineID, -sale.Quantity)
	})
}

// UpdateSale edits a sale and applies the quantity delta to stock in the
// same transaction. The new quantity may not exceed current stock plus the
// quantity the original sale already took.
func (s *Service) UpdateSale(ctx context.Context, sale *Sale) error {
	if sale.Quantity <= 0 {
		return fmt.Errorf("sale quantity must be positive")
	}
	return s.uow(ctx, func(ctx context.Context) error {
		original, err := s.sales.GetByID(ctx, sale.ID)
		if err != nil {
			return fmt.Errorf("sale not found: %w", err)
		}
		m, err := s.medicines.GetByID(ctx, original.MedicineID)
		if err != nil {
			return err
		}
		if sale.Quantity > m.Quantity+original.Quantity {
			return fmt.Errorf("insufficient stock: have %d plus %d from this sale, requested %d",
				m.Quantity, original.Quantity, sale.Quantity)
		}
		sale.MedicineID = original.MedicineID
		sale.PatientID = original.PatientID
		if sale.UnitPrice == 0 {
			sale.UnitPrice = original.UnitPrice
		}
		if sale.UnitPrice < 0 {
			return fmt.Errorf("unit price cannot be negative")
		}
		if sale.SaleDate.IsZero() {
			sale.SaleDate = original.SaleDate
		}
		sale.TotalAmount = float64(sale.Quantity) * sale.UnitPrice
		if err := s.sales.Update(ctx, sale); err != nil {
			return err
		}
		delta := sale.Quantity - original.Quantity
		if delta == 0 {
			return nil
		}
		return s.medicines.AdjustQuantity(ctx, original.MedicineID, -delta)
	})
}

// DeleteSale voids a sale and returns its quantity to stock.
func (s *Service) DeleteSale(ctx context.Context, id uuid.UUID) error {
	return s.uow(ctx, func(ctx context.Context) error {
		sale, err := s.sales.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("sale not found: %w", err)
		}
		if err := s.sales.Delete(ctx, id); err != nil {
			return err
		}
		return s.medicines.AdjustQuantity(ctx, sale.MedicineID, sale.Quantity)
	})
}

func (s *Service) ListSales(ctx context.Context, medicineID uuid.UUID, limit, offset int) ([]*Sale, int, error) {
	return s.sales.List(ctx, medicineID, limit, offset)
}

// -- Purchases --

// RecordPurchase writes the purchase row and increments stock atomically.
func (s *Service) RecordPurchase(ctx context.Context, p *Purchase) error {
	p.Supplier = strings.TrimSpace(p.Supplier)
	if p.Quantity <= 0 {
		return fmt.Errorf("purchase quantity must be positive")
	}
	if p.UnitPrice < 0 {
		return fmt.Errorf("unit price cannot be negative")
	}
	if p.Supplier == "" {
		return fmt.Errorf("supplier is required")
	}
	if p.PurchaseDate.IsZero() {
		p.PurchaseDate = s.now()
	}
	p.TotalAmount = float64(p.Quantity) * p.UnitPrice
	return s.uow(ctx, func(ctx context.Context) error {
		if _, err := s.medicines.GetByID(ctx, p.MedicineID); err != nil {
			return fmt.Errorf("medicine not found: %w", err)
		}
		if err := s.purchases.Create(ctx, p); err != nil {
			return err
		}
		return s.medicines.AdjustQuantity(ctx, p.MedicineID, p.Quantity)
	})
}

// UpdatePurchase edits a purchase and applies the quantity delta to stock.
// Shrinking a purchase may not drive stock negative: the delivered units
// must still be on the shelf to take back.
func (s *Service) UpdatePurchase(ctx context.Context, p *Purchase) error {
	if p.Quantity <= 0 {
		return fmt.Errorf("purchase quantity must be positive")
	}
	return s.uow(ctx, func(ctx context.Context) error {
		original, err := s.purchases.GetByID(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("purchase not found: %w", err)
		}
		m, err := s.medicines.GetByID(ctx, original.MedicineID)
		if err != nil {
			return err
		}
		delta := p.Quantity - original.Quantity
		if m.Quantity+delta < 0 {
			return fmt.Errorf("reducing this purchase by %d would drive stock below zero", -delta)
		}
		p.MedicineID = original.MedicineID
		if p.Supplier = strings.TrimSpace(p.Supplier); p.Supplier == "" {
			p.Supplier = original.Supplier
		}
		if p.UnitPrice == 0 {
			p.UnitPrice = original.UnitPrice
		}
		if p.UnitPrice < 0 {
			return fmt.Errorf("unit price cannot be negative")
		}
		if p.PurchaseDate.IsZero() {
			p.PurchaseDate = original.PurchaseDate
		}
		p.TotalAmount = float64(p.Quantity) * p.UnitPrice
		if err := s.purchases.Update(ctx, p); err != nil {
			return err
		}
		if delta == 0 {
			return nil
		}
		return s.medicines.AdjustQuantity(ctx, original.MedicineID, delta)
	})
}

// DeletePurchase voids a purchase and removes its quantity from stock,
// provided the units are still unsold.
func (s *Service) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	return s.uow(ctx, func(ctx context.Context) error {
		p, err := s.purchases.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("purchase not found: %w", err)
		}
		m, err := s.medicines.GetByID(ctx, p.MedicineID)
		if err != nil {
			return err
		}
		if m.Quantity < p.Quantity {
			return fmt.Errorf("only %d of %d purchased units remain in stock; cannot void", m.Quantity, p.Quantity)
		}
		if err := s.purchases.Delete(ctx, id); err != nil {
			return err
		}
		return s.medicines.AdjustQuantity(ctx, p.MedicineID, -p.Quantity)
	})
}

func (s *Service) ListPurchases(ctx context.Context, medicineID uuid.UUID, limit, offset int) ([]*Purchase, int, error) {
	return s.purchases.List(ctx, medicineID, limit, offset)
}
