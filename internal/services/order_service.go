package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/elzaeemwork/autoreply-backend/internal/extract"
	"github.com/elzaeemwork/autoreply-backend/internal/models"
	pgrepo "github.com/elzaeemwork/autoreply-backend/internal/repositories/postgres"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// CreateOrderInput is a manually submitted order. CustomerInfo is the free
// text variant; when the structured fields are empty it is parsed with the
// same heuristics the chat pipeline uses.
type CreateOrderInput struct {
	ProductID       string
	ProductName     string
	Quantity        int
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	CustomerInfo    string
	Notes           string
	Source          models.OrderSource
	PaymentMethod   string
}

type UpdateOrderInput struct {
	Status          *models.OrderStatus
	CustomerName    *string
	CustomerPhone   *string
	CustomerAddress *string
	Notes           *string
	Quantity        *int
}

type OrderService interface {
	List(ctx context.Context, userID string) ([]models.Order, error)
	Get(ctx context.Context, userID, id string) (*models.Order, error)
	Create(ctx context.Context, userID string, in CreateOrderInput) (*models.Order, error)
	Update(ctx context.Context, userID, id string, in UpdateOrderInput) (*models.Order, error)
	Delete(ctx context.Context, userID, id string) error
}

type orderService struct {
	orders   pgrepo.OrderRepository
	products pgrepo.ProductRepository
	log      *logrus.Logger
}

func NewOrderService(orders pgrepo.OrderRepository, products pgrepo.ProductRepository, log *logrus.Logger) OrderService {
	return &orderService{orders: orders, products: products, log: log}
}

func (s *orderService) List(ctx context.Context, userID string) ([]models.Order, error) {
	const op = "OrderService.List"

	rows, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list orders", err)
	}
	return rows, nil
}

func (s *orderService) Get(ctx context.Context, userID, id string) (*models.Order, error) {
	const op = "OrderService.Get"

	o, err := s.orders.GetByID(ctx, userID, id)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "order not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load order", err)
	}
	return o, nil
}

func (s *orderService) Create(ctx context.Context, userID string, in CreateOrderInput) (*models.Order, error) {
	const op = "OrderService.Create"

	if in.ProductName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "product_name is required", nil)
	}
	if in.Quantity < 1 {
		in.Quantity = 1
	}
	if in.Source == "" {
		in.Source = models.SourceManual
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = "cash"
	}

	// Legacy clients send one customer_info blob instead of the split
	// fields. It goes through the same extraction the chat path uses.
	if in.CustomerName == "" && in.CustomerPhone == "" && in.CustomerAddress == "" && in.CustomerInfo != "" {
		info := extract.ParseCustomerInfo(in.CustomerInfo)
		in.CustomerName = info.Name
		in.CustomerPhone = info.Phone
		in.CustomerAddress = info.Address
	}

	productID := in.ProductID
	price := "0"
	total := "0"
	if productID != "" {
		p, err := s.products.GetByID(ctx, userID, productID)
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "product not found", err)
		}
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to load product", err)
		}
		price = p.Price
		total = totalAmount(p.Price, in.Quantity)
	} else {
		productID = models.UnknownProductID
	}

	items, _ := json.Marshal([]models.OrderItem{{
		ProductID:   productID,
		ProductName: in.ProductName,
		Quantity:    in.Quantity,
		Price:       price,
	}})

	o := &models.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		ProductID:       productID,
		ProductName:     in.ProductName,
		Quantity:        in.Quantity,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		CustomerAddress: in.CustomerAddress,
		TotalAmount:     total,
		Notes:           in.Notes,
		Status:          models.OrderPending,
		Source:          in.Source,
		PaymentMethod:   in.PaymentMethod,
		Items:           datatypes.JSON(items),
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create order", err)
	}
	return o, nil
}

func (s *orderService) Update(ctx context.Context, userID, id string, in UpdateOrderInput) (*models.Order, error) {
	const op = "OrderService.Update"

	fields := map[string]any{}
	if in.Status != nil {
		if !models.ValidOrderStatus(*in.Status) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "invalid order status", nil)
		}
		fields["status"] = *in.Status
	}
	if in.CustomerName != nil {
		fields["customer_name"] = *in.CustomerName
	}
	if in.CustomerPhone != nil {
		fields["customer_phone"] = *in.CustomerPhone
	}
	if in.CustomerAddress != nil {
		fields["customer_address"] = *in.CustomerAddress
	}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			return nil, utils.E(utils.CodeInvalidArgument, op, "quantity must be at least 1", nil)
		}
		fields["quantity"] = *in.Quantity
	}
	if len(fields) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "no updatable fields provided", nil)
	}
	fields["updated_at"] = time.Now().UTC()

	o, err := s.orders.UpdateFields(ctx, userID, id, fields)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "order not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update order", err)
	}
	return o, nil
}

func (s *orderService) Delete(ctx context.Context, userID, id string) error {
	const op = "OrderService.Delete"

	err := s.orders.Delete(ctx, userID, id)
	if errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeNotFound, op, "order not found", err)
	}
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete order", err)
	}
	return nil
}
