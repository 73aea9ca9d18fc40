package services_test

import (
	"context"
	"testing"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/services"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
)

type fakeProductRepo struct {
	byID map[string]*models.Product
}

func (f *fakeProductRepo) ListByUser(_ context.Context, userID string) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.byID {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, userID, id string) (*models.Product, error) {
	p, ok := f.byID[id]
	if !ok || p.UserID != userID {
		return nil, utils.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	f.byID[p.ID] = p
	return nil
}

func (f *fakeProductRepo) UpdateFields(context.Context, string, string, map[string]any) (*models.Product, error) {
	return nil, utils.ErrNotFound
}

func (f *fakeProductRepo) Delete(context.Context, string, string) error {
	return utils.ErrNotFound
}

func (f *fakeProductRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}

func newOrderFixture() (services.OrderService, *fakeOrderRepo) {
	orders := &fakeOrderRepo{}
	products := &fakeProductRepo{byID: map[string]*models.Product{
		"p1": {ID: "p1", UserID: "u1", Name: "لابتوب ديل", Price: "500 دولار"},
	}}
	return services.NewOrderService(orders, products, quietLogger()), orders
}

func TestOrderCreateComputesTotalFromCatalog(t *testing.T) {
	svc, orders := newOrderFixture()

	o, err := svc.Create(context.Background(), "u1", services.CreateOrderInput{
		ProductID:    "p1",
		ProductName:  "لابتوب ديل",
		Quantity:     3,
		CustomerName: "أحمد",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.TotalAmount != "1500" {
		t.Fatalf("total = %q, want 1500", o.TotalAmount)
	}
	if o.Status != models.OrderPending || o.Source != models.SourceManual {
		t.Fatalf("status/source = %q/%q", o.Status, o.Source)
	}
	if len(orders.created) != 1 {
		t.Fatalf("expected 1 persisted order, got %d", len(orders.created))
	}
}

func TestOrderCreateParsesLegacyCustomerInfo(t *testing.T) {
	svc, _ := newOrderFixture()

	o, err := svc.Create(context.Background(), "u1", services.CreateOrderInput{
		ProductName:  "لابتوب ديل",
		CustomerInfo: "اسمي أحمد، رقمي 0791234567، وعنواني بغداد الكرادة",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.CustomerName != "أحمد" || o.CustomerPhone != "0791234567" || o.CustomerAddress != "بغداد الكرادة" {
		t.Fatalf("customer info not extracted: %q / %q / %q", o.CustomerName, o.CustomerPhone, o.CustomerAddress)
	}
	if o.ProductID != models.UnknownProductID {
		t.Fatalf("expected unknown product sentinel, got %q", o.ProductID)
	}
	if o.Quantity != 1 {
		t.Fatalf("quantity should default to 1, got %d", o.Quantity)
	}
}

func TestOrderCreateUnknownProductID(t *testing.T) {
	svc, _ := newOrderFixture()

	_, err := svc.Create(context.Background(), "u1", services.CreateOrderInput{
		ProductID:   "missing",
		ProductName: "شي ثاني",
	})
	if !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestOrderUpdateValidatesStatus(t *testing.T) {
	svc, _ := newOrderFixture()

	bad := models.OrderStatus("archived")
	_, err := svc.Update(context.Background(), "u1", "o1", services.UpdateOrderInput{Status: &bad})
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for bogus status, got %v", err)
	}
}

func TestOrderUpdateNotFound(t *testing.T) {
	svc, _ := newOrderFixture()

	status := models.OrderShipped
	_, err := svc.Update(context.Background(), "u1", "nope", services.UpdateOrderInput{Status: &status})
	if !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestOrderDeleteNotFound(t *testing.T) {
	svc, _ := newOrderFixture()

	if err := svc.Delete(context.Background(), "u1", "nope"); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
