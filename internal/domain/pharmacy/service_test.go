package pharmacy

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repositories --

type mockMedicineRepo struct {
	items map[uuid.UUID]*Medicine
}

func newMockMedicineRepo() *mockMedicineRepo {
	return &mockMedicineRepo{items: make(map[uuid.UUID]*Medicine)}
}

func (m *mockMedicineRepo) Create(_ context.Context, med *Medicine) error {
	med.ID = uuid.New()
	med.CreatedAt = time.Now()
	med.UpdatedAt = time.Now()
	cp := *med
	m.items[med.ID] = &cp
	return nil
}

func (m *mockMedicineRepo) GetByID(_ context.Context, id uuid.UUID) (*Medicine, error) {
	med, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *med
	return &cp, nil
}

func (m *mockMedicineRepo) Update(_ context.Context, med *Medicine) error {
	existing, ok := m.items[med.ID]
	if !ok {
		return fmt.Errorf("not found")
	}
	cp := *med
	cp.Quantity = existing.Quantity
	m.items[med.ID] = &cp
	return nil
}

func (m *mockMedicineRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockMedicineRepo) AdjustQuantity(_ context.Context, id uuid.UUID, delta int) error {
	med, ok := m.items[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	if med.Quantity+delta < 0 {
		return fmt.Errorf("stock adjustment of %d rejected", delta)
	}
	med.Quantity += delta
	return nil
}

func (m *mockMedicineRepo) List(_ context.Context, f MedicineFilter, limit, offset int) ([]*Medicine, int, error) {
	var result []*Medicine
	for _, med := range m.items {
		if f.Search != "" && !strings.Contains(med.Name, f.Search) {
			continue
		}
		cp := *med
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (m *mockMedicineRepo) ListLowStock(_ context.Context) ([]*Medicine, error) {
	var result []*Medicine
	for _, med := range m.items {
		if med.Quantity <= med.MinQuantity {
			cp := *med
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *mockMedicineRepo) ListExpiringBy(_ context.Context, cutoff time.Time) ([]*Medicine, error) {
	var result []*Medicine
	for _, med := range m.items {
		if med.ExpiryDate != nil && !med.ExpiryDate.After(cutoff) {
			cp := *med
			result = append(result, &cp)
		}
	}
	return result, nil
}

type mockSaleRepo struct {
	items map[uuid.UUID]*Sale
}

func newMockSaleRepo() *mockSaleRepo {
	return &mockSaleRepo{items: make(map[uuid.UUID]*Sale)}
}

func (m *mockSaleRepo) Create(_ context.Context, s *Sale) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *mockSaleRepo) GetByID(_ context.Context, id uuid.UUID) (*Sale, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *s
	return &cp, nil
}

func (m *mockSaleRepo) Update(_ context.Context, s *Sale) error {
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *mockSaleRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockSaleRepo) List(_ context.Context, medicineID uuid.UUID, limit, offset int) ([]*Sale, int, error) {
	var result []*Sale
	for _, s := range m.items {
		if medicineID == uuid.Nil || s.MedicineID == medicineID {
			cp := *s
			result = append(result, &cp)
		}
	}
	return result, len(result), nil
}

func (m *mockSaleRepo) CountByMedicine(_ context.Context, medicineID uuid.UUID) (int, error) {
	n := 0
	for _, s := range m.items {
		if s.MedicineID == medicineID {
			n++
		}
	}
	return n, nil
}

type mockPurchaseRepo struct {
	items map[uuid.UUID]*Purchase
}

func newMockPurchaseRepo() *mockPurchaseRepo {
	return &mockPurchaseRepo{items: make(map[uuid.UUID]*Purchase)}
}

func (m *mockPurchaseRepo) Create(_ context.Context, p *Purchase) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockPurchaseRepo) GetByID(_ context.Context, id uuid.UUID) (*Purchase, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockPurchaseRepo) Update(_ context.Context, p *Purchase) error {
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockPurchaseRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockPurchaseRepo) List(_ context.Context, medicineID uuid.UUID, limit, offset int) ([]*Purchase, int, error) {
	var result []*Purchase
	for _, p := range m.items {
		if medicineID == uuid.Nil || p.MedicineID == medicineID {
			cp := *p
			result = append(result, &cp)
		}
	}
	return result, len(result), nil
}

func (m *mockPurchaseRepo) CountByMedicine(_ context.Context, medicineID uuid.UUID) (int, error) {
	n := 0
	for _, p := range m.items {
		if p.MedicineID == medicineID {
			n++
		}
	}
	return n, nil
}

func passthroughUOW(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockMedicineRepo, *mockSaleRepo, *mockPurchaseRepo) {
	medicines := newMockMedicineRepo()
	sales := newMockSaleRepo()
	purchases := newMockPurchaseRepo()
	svc := NewService(medicines, sales, purchases, passthroughUOW, DefaultAlertWindows())
	return svc, medicines, sales, purchases
}

func newMedicine(t *testing.T, svc *Service, quantity, minQuantity int) *Medicine {
	t.Helper()
	m := &Medicine{Name: "Paracetamol", Price: 2.5, Quantity: quantity, MinQuantity: minQuantity}
	if err := svc.CreateMedicine(context.Background(), m); err != nil {
		t.Fatalf("CreateMedicine() error: %v", err)
	}
	return m
}

// -- Pure Classifiers --

func TestClassifyStock(t *testing.T) {
	cases := []struct {
		quantity, min int
		want          string
	}{
		{0, 5, StockOutOfStock},
		{3, 5, StockLow},
		{5, 5, StockLow},
		{6, 5, StockNormal},
		{0, 0, StockOutOfStock},
	}
	for _, tc := range cases {
		if got := ClassifyStock(tc.quantity, tc.min); got != tc.want {
			t.Errorf("ClassifyStock(%d, %d) = %s, want %s", tc.quantity, tc.min, got, tc.want)
		}
	}
}

func TestClassifyExpiry(t *testing.T) {
	today := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	day := func(offset int) *time.Time {
		d := today.AddDate(0, 0, offset)
		return &d
	}
	cases := []struct {
		expiry *time.Time
		want   string
	}{
		{nil, ExpiryNormal},
		{day(-1), ExpiryExpired},
		{day(0), ExpiryCritical},
		{day(7), ExpiryCritical},
		{day(8), ExpiryWarning},
		{day(30), ExpiryWarning},
		{day(31), ExpiryNormal},
	}
	for i, tc := range cases {
		if got := ClassifyExpiry(tc.expiry, today, 30, 7); got != tc.want {
			t.Errorf("case %d: ClassifyExpiry = %s, want %s", i, got, tc.want)
		}
	}
}

// -- Sales and Stock --

// Medicine at 10 with threshold 5: selling 3 leaves 7 (Normal), selling 4
// leaves 3 (Low Stock), selling the last 3 empties it (Out of Stock), and a
// further sale is rejected.
func TestSaleStockProgression(t *testing.T) {
	svc, _, _, _ := newTestService()
	m := newMedicine(t, svc, 10, 5)

	steps := []struct {
		sell      int
		wantQty   int
		wantAlert string
	}{
		{3, 7, StockNormal},
		{4, 3, StockLow},
		{3, 0, StockOutOfStock},
	}
	for _, step := range steps {
		if err := svc.RecordSale(context.Background(), &Sale{MedicineID: m.ID, Quantity: step.sell}); err != nil {
			t.Fatalf("RecordSale(%d) error: %v", step.sell, err)
		}
		got, err := svc.GetMedicine(context.Background(), m.ID)
		if err != nil {
			t.Fatalf("GetMedicine() error: %v", err)
		}
		if got.Quantity != step.wantQty {
			t.Errorf("after selling %d: quantity = %d, want %d", step.sell, got.Quantity, step.wantQty)
		}
		if got.StockAlert != step.wantAlert {
			t.Errorf("after selling %d: alert = %s, want %s", step.sell, got.StockAlert, step.wantAlert)
		}
	}

	if err := svc.RecordSale(context.Background(), &Sale{MedicineID: m.ID, Quantity: 1}); err == nil {
		t.Error("sale from empty stock should be rejected")
	}
}

func TestRecordSaleDefaultsPriceAndTotal(t *testing.T) {
	svc, _, _, _ := newTestService()
	m := newMedicine(t, svc, 10, 5)

	s := &Sale{MedicineID: m.ID, Quantity: 4}
	if err := svc.RecordSale(context.Background(), s); err != nil {
		t.Fatalf("RecordSale() error: %v", err)
	}
	if s.UnitPrice != 2.5 {
		t.Errorf("unit price should default to medicine price, got %v", s.UnitPrice)
	}
	if s.TotalAmount != 10 {
		t.Errorf("expected total 10, got %v", s.TotalAmount)
	}
}

func TestUpdateSaleAppliesDelta(t *testing.T) {
	svc, _, _, _ := newTestService()
	m := newMedicine(t, svc, 10, 5)

	s := &Sale{MedicineID: m.ID, Quantity: 6}
	if err := svc.RecordSale(context.Background(), s); err != nil {
		t.Fatalf("RecordSale() error: %v", err)
	}

	// 6 -> 2 returns 4 to stock
	upd := &Sale{ID: s.ID, Quantity: 2}
	if err := svc.UpdateSale(context.Background(), upd); err != nil {
		t.Fatalf("UpdateSale() error: %v", err)
	}
	got, _ := svc.GetMedicine(context.Background(), m.ID)
	if got.Quantity != 8 {
		t.Errorf("expected quantity 8, got %d", got.Quantity)
	}

	// 2 -> 10 takes all remaining stock (8 + the 2 held by this sale)
	upd = &Sale{ID: s.ID, Quantity: 10}
	if err := svc.UpdateSale(context.Background(), upd); err != nil {
		t.Fatalf("UpdateSale() error: %v", err)
	}
	got, _ = svc.GetMedicine(context.Background(), m.ID)
	if got.Quantity != 0 {
		t.Errorf("expected quantity 0, got %d", got.Quantity)
	}

	// 10 -> 11 exceeds stock plus this sale's own quantity
	upd = &Sale{ID: s.ID, Quantity: 11}
	if err := svc.UpdateSale(context.Background(), upd); err == nil {
		t.Error("expected error when edit exceeds available stock")
	}
}

func TestDeleteSaleRestoresStock(t *testing.T) {
	svc, _, _, _ := newTestService()
	m := newMedicine(t, svc, 10, 5)

	s := &Sale{MedicineID: m.ID, Quantity: 6}
	if err := svc.RecordSale(context.Background(), s); err != nil {
		t.Fatalf("RecordSale() error: %v", err)
	}
	if err := svc.DeleteSale(context.Background(), s.ID); err != nil {
		t.Fatalf("DeleteSale() error: %v", err)
	}
	got, _ := svc.GetMedicine(context.Background(), m.ID)
	if got.Quantity != 10 {
		t.Errorf("expected quantity restored to 10, got %d", got.Quantity)
	}
}

// -- Purchases and Stock --

// Purchase of 20 at zero stock brings it to 20; editing the purchase down
// to 15 applies a -5 delta.
func TestPurchaseEditDelta(t *testing.T) {
	svc, _, _, _ := newTestService()
	m := newMedicine(t, svc, 0, 5)

	p := &Purchase{MedicineID: m.ID, Supplier: "MedSupply Co", Quantity: 20, UnitPrice: 1.5}
	if err := svc.RecordPurchase(context.Background(), p); err != nil {
		t.Fatalf("RecordPurchase() error: %v", err)
	}
	got, _ := svc.GetMedicine(context.Background(), m.ID)
	if got.Quantity != 20 {
		t.Fatalf("expected quantity 20, got %d", got.Quantity)
	}

	upd := &Purchase{ID: p.ID, Quantity: 15}
	if err := svc.UpdatePurchase(context.Background(), upd); err != nil {
		t.Fatalf("UpdatePurchase() error: %v", err)
	}
	got, _ = svc.GetMedicine(context.Background(), m.ID)
	if got.Quantity != 15 {
		t.Errorf("expected quantity 15 after -5 delta, got %d", got.Quantity)
	}
}

func TestPurchaseEditCannotDriveStockNegative(t *testing.T) {
	svc, _, _, _ := newTestService()
	m := newMedicine(t, svc, 0, 5)

	p := &Purchase{MedicineID: m.ID, Supplier: "MedSupply Co", Quantity: 20, UnitPrice: 1.5}
	if err := svc.RecordPurchase(context.Background(), p); err != nil {
		t.Fatalf("RecordPurchase() error: %v", err)
	}
	// 18 of the 20 purchased units already sold
	if err := svc.RecordSale(context.Background(), &Sale{MedicineID: m.ID, Quantity: 18}); err != nil {
		t.Fatalf("RecordSale() error: %v", err)
	}

	upd := &Purchase{ID: p.ID, Quantity: 1}
	if err := svc.UpdatePurchase(context.Background(), upd); err == nil {
		t.Error("expected error when purchase reduction would drive stock negative")
	}

	got, _ := svc.GetMedicine(context.Background(), m.ID)
	if got.Quantity != 2 {
		t.Errorf("stock should be unchanged at 2, got %d", got.Quantity)
	}
}

func TestDeletePurchaseRequiresUnsoldStock(t *testing.T) {
	svc, _, _, _ := newTestService()
	m := newMedicine(t, svc, 0, 5)

	p := &Purchase{MedicineID: m.ID, Supplier: "MedSupply Co", Quantity: 10, UnitPrice: 1}
	if err := svc.RecordPurchase(context.Background(), p); err != nil {
		t.Fatalf("RecordPurchase() error: %v", err)
	}
	if err := svc.RecordSale(context.Background(), &Sale{MedicineID: m.ID, Quantity: 5}); err != nil {
		t.Fatalf("RecordSale() error: %v", err)
	}
	if err := svc.DeletePurchase(context.Background(), p.ID); err == nil {
		t.Error("expected error voiding purchase with sold units")
	}
}

func TestRecordPurchaseValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	m := newMedicine(t, svc, 0, 5)

	if err := svc.RecordPurchase(context.Background(), &Purchase{MedicineID: m.ID, Supplier: "X", Quantity: 0}); err == nil {
		t.Error("expected error for zero quantity")
	}
	if err := svc.RecordPurchase(context.Background(), &Purchase{MedicineID: m.ID, Quantity: 5}); err == nil {
		t.Error("expected error for missing supplier")
	}
	if err := svc.RecordPurchase(context.Background(), &Purchase{MedicineID: uuid.New(), Supplier: "X", Quantity: 5}); err == nil {
		t.Error("expected error for unknown medicine")
	}
}

// -- Medicine Lifecycle --

func TestUpdateMedicineIgnoresQuantity(t *testing.T) {
	svc, _, _, _ := newTestService()
	m := newMedicine(t, svc, 10, 5)

	upd := &Medicine{ID: m.ID, Name: "Paracetamol 500", Price: 3, Quantity: 999, MinQuantity: 5}
	if err := svc.UpdateMedicine(context.Background(), upd); err != nil {
		t.Fatalf("UpdateMedicine() error: %v", err)
	}
	got, _ := svc.GetMedicine(context.Background(), m.ID)
	if got.Quantity != 10 {
		t.Errorf("quantity must only move through sales/purchases, got %d", got.Quantity)
	}
	if got.Name != "Paracetamol 500" {
		t.Errorf("name not updated: %s", got.Name)
	}
}

func TestDeleteMedicineWithHistoryBlocked(t *testing.T) {
	svc, _, _, _ := newTestService()
	m := newMedicine(t, svc, 10, 5)

	if err := svc.RecordSale(context.Background(), &Sale{MedicineID: m.ID, Quantity: 1}); err != nil {
		t.Fatalf("RecordSale() error: %v", err)
	}
	if err := svc.DeleteMedicine(context.Background(), m.ID); err == nil {
		t.Error("expected error deleting medicine with sale history")
	}

	fresh := newMedicine(t, svc, 5, 2)
	if err := svc.DeleteMedicine(context.Background(), fresh.ID); err != nil {
		t.Errorf("deleting unreferenced medicine should succeed: %v", err)
	}
}

// -- Alerts --

func TestStockAlerts(t *testing.T) {
	svc, _, _, _ := newTestService()
	newMedicine(t, svc, 10, 5)
	low := &Medicine{Name: "Ibuprofen", Price: 5, Quantity: 2, MinQuantity: 5}
	if err := svc.CreateMedicine(context.Background(), low); err != nil {
		t.Fatalf("CreateMedicine() error: %v", err)
	}

	alerts, err := svc.StockAlerts(context.Background())
	if err != nil {
		t.Fatalf("StockAlerts() error: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].StockAlert != StockLow {
		t.Errorf("expected Low Stock, got %s", alerts[0].StockAlert)
	}
}

func TestExpiryAlerts(t *testing.T) {
	svc, _, _, _ := newTestService()
	now := time.Now()

	soon := now.AddDate(0, 0, 5)
	far := now.AddDate(0, 0, 90)
	past := now.AddDate(0, 0, -2)
	for _, med := range []*Medicine{
		{Name: "Amoxicillin", Price: 8, Quantity: 10, ExpiryDate: &soon},
		{Name: "Cetirizine", Price: 3, Quantity: 10, ExpiryDate: &far},
		{Name: "Old Batch", Price: 1, Quantity: 10, ExpiryDate: &past},
	} {
		if err := svc.CreateMedicine(context.Background(), med); err != nil {
			t.Fatalf("CreateMedicine() error: %v", err)
		}
	}

	alerts, err := svc.ExpiryAlerts(context.Background())
	if err != nil {
		t.Fatalf("ExpiryAlerts() error: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	levels := map[string]string{}
	for _, a := range alerts {
		levels[a.Name] = a.ExpiryAlert
	}
	if levels["Amoxicillin"] != ExpiryCritical {
		t.Errorf("expected Critical for Amoxicillin, got %s", levels["Amoxicillin"])
	}
	if levels["Old Batch"] != ExpiryExpired {
		t.Errorf("expected Expired for Old Batch, got %s", levels["Old Batch"])
	}
}

func TestAlertCounts(t *testing.T) {
	svc, _, _, _ := newTestService()
	now := time.Now()

	soon := now.AddDate(0, 0, 5)
	past := now.AddDate(0, 0, -2)
	for _, med := range []*Medicine{
		{Name: "Healthy", Price: 5, Quantity: 100, MinQuantity: 10},
		{Name: "Running Low", Price: 5, Quantity: 3, MinQuantity: 10},
		{Name: "Gone", Price: 5, Quantity: 0, MinQuantity: 10},
		{Name: "Expiring", Price: 8, Quantity: 50, ExpiryDate: &soon},
		{Name: "Expired", Price: 1, Quantity: 50, ExpiryDate: &past},
	} {
		if err := svc.CreateMedicine(context.Background(), med); err != nil {
			t.Fatalf("CreateMedicine() error: %v", err)
		}
	}

	sum, err := svc.AlertCounts(context.Background())
	if err != nil {
		t.Fatalf("AlertCounts() error: %v", err)
	}
	if sum.LowStock != 1 || sum.OutOfStock != 1 {
		t.Errorf("stock counts wrong: %+v", sum)
	}
	if sum.Critical != 1 || sum.Expired != 1 || sum.Warning != 0 {
		t.Errorf("expiry counts wrong: %+v", sum)
	}
}
