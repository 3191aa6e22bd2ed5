package pharmacy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _, _, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func TestHandler_CreateMedicine(t *testing.T) {
	h, e := newTestHandler()
	body := `{"name":"Paracetamol","price":2.5,"quantity":100,"min_quantity":20}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateMedicine(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var got Medicine
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.StockAlert != StockNormal {
		t.Errorf("expected Normal stock alert, got %s", got.StockAlert)
	}
}

func TestHandler_CreateMedicine_NegativePrice(t *testing.T) {
	h, e := newTestHandler()
	body := `{"name":"Paracetamol","price":-1}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateMedicine(c); err == nil {
		t.Error("expected error for negative price")
	}
}

func TestHandler_RecordSale(t *testing.T) {
	h, e := newTestHandler()
	m := &Medicine{Name: "Paracetamol", Price: 2.5, Quantity: 10, MinQuantity: 5}
	if err := h.svc.CreateMedicine(nil, m); err != nil {
		t.Fatalf("CreateMedicine() error: %v", err)
	}

	body := `{"medicine_id":"` + m.ID.String() + `","quantity":3}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.RecordSale(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	got, _ := h.svc.GetMedicine(nil, m.ID)
	if got.Quantity != 7 {
		t.Errorf("expected stock 7 after sale, got %d", got.Quantity)
	}
}

func TestHandler_RecordSale_InsufficientStock(t *testing.T) {
	h, e := newTestHandler()
	m := &Medicine{Name: "Paracetamol", Price: 2.5, Quantity: 2, MinQuantity: 5}
	if err := h.svc.CreateMedicine(nil, m); err != nil {
		t.Fatalf("CreateMedicine() error: %v", err)
	}

	body := `{"medicine_id":"` + m.ID.String() + `","quantity":3}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.RecordSale(c); err == nil {
		t.Error("expected error for insufficient stock")
	}
}

func TestHandler_StockAlerts(t *testing.T) {
	h, e := newTestHandler()
	if err := h.svc.CreateMedicine(nil, &Medicine{Name: "Ibuprofen", Price: 5, Quantity: 0, MinQuantity: 5}); err != nil {
		t.Fatalf("CreateMedicine() error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.StockAlerts(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []*Medicine
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(got) != 1 || got[0].StockAlert != StockOutOfStock {
		t.Errorf("expected one Out of Stock alert, got %+v", got)
	}
}

func TestHandler_DeleteMedicine_InvalidID(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	if err := h.DeleteMedicine(c); err == nil {
		t.Error("expected error for invalid id")
	}
}

func TestHandler_ListSales_InvalidMedicineID(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/?medicine_id=bad", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListSales(c); err == nil {
		t.Error("expected error for invalid medicine_id")
	}
}

func TestHandler_UpdatePurchase(t *testing.T) {
	h, e := newTestHandler()
	m := &Medicine{Name: "Paracetamol", Price: 2.5, Quantity: 0, MinQuantity: 5}
	if err := h.svc.CreateMedicine(nil, m); err != nil {
		t.Fatalf("CreateMedicine() error: %v", err)
	}
	p := &Purchase{MedicineID: m.ID, Supplier: "MedSupply Co", Quantity: 20, UnitPrice: 1.5}
	if err := h.svc.RecordPurchase(nil, p); err != nil {
		t.Fatalf("RecordPurchase() error: %v", err)
	}

	body := `{"quantity":15}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.UpdatePurchase(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := h.svc.GetMedicine(nil, m.ID)
	if got.Quantity != 15 {
		t.Errorf("expected stock 15, got %d", got.Quantity)
	}
}
