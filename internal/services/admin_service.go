package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	pgrepo "github.com/elzaeemwork/autoreply-backend/internal/repositories/postgres"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AdminStats is the dashboard aggregate over all tenants.
type AdminStats struct {
	TotalUsers    int   `json:"total_users"`
	ActiveUsers   int   `json:"active_users"`
	TotalMessages int   `json:"total_messages"`
	TotalOrders   int64 `json:"total_orders"`
	TotalProducts int64 `json:"total_products"`
	UnusedCodes   int   `json:"unused_codes"`
	RedeemedCodes int   `json:"redeemed_codes"`
}

type CreateCodeInput struct {
	Type        models.ActivationType
	Duration    int // days; 0 means the type's default
	Description string
}

type AdminService interface {
	// Login checks the operator credentials from the environment and issues
	// an admin-role token. There is no admin row in the database.
	Login(ctx context.Context, username, password string) (string, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListCodes(ctx context.Context) ([]models.ActivationCode, error)
	CreateCode(ctx context.Context, in CreateCodeInput) (*models.ActivationCode, error)
	DeleteCode(ctx context.Context, code string) error
	Stats(ctx context.Context) (*AdminStats, error)
}

type adminService struct {
	users         pgrepo.UserRepository
	codes         pgrepo.ActivationCodeRepository
	orders        pgrepo.OrderRepository
	products      pgrepo.ProductRepository
	adminUsername string
	adminPassword string
	jwtSecret     string
	log           *logrus.Logger
}

func NewAdminService(users pgrepo.UserRepository, codes pgrepo.ActivationCodeRepository, orders pgrepo.OrderRepository, products pgrepo.ProductRepository, adminUsername, adminPassword, jwtSecret string, log *logrus.Logger) AdminService {
	return &adminService{
		users:         users,
		codes:         codes,
		orders:        orders,
		products:      products,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
		jwtSecret:     jwtSecret,
		log:           log,
	}
}

func (s *adminService) Login(ctx context.Context, username, password string) (string, error) {
	const op = "AdminService.Login"

	if s.adminUsername == "" || s.adminPassword == "" {
		return "", utils.E(utils.CodeInternal, op, "admin credentials are not configured", nil)
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
	if !userOK || !passOK {
		return "", utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
	}

	token, err := utils.IssueToken(s.jwtSecret, "admin", "admin", time.Now().UTC())
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return token, nil
}

func (s *adminService) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "AdminService.ListUsers"

	rows, err := s.users.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list users", err)
	}
	return rows, nil
}

func (s *adminService) ListCodes(ctx context.Context) ([]models.ActivationCode, error) {
	const op = "AdminService.ListCodes"

	rows, err := s.codes.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list codes", err)
	}
	return rows, nil
}

func (s *adminService) CreateCode(ctx context.Context, in CreateCodeInput) (*models.ActivationCode, error) {
	const op = "AdminService.CreateCode"

	if in.Type != models.ActivationTemp && in.Type != models.ActivationFull {
		return nil, utils.E(utils.CodeInvalidArgument, op, "type must be temp or full", nil)
	}
	if in.Duration < 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "duration must not be negative", nil)
	}

	now := time.Now().UTC()
	c := &models.ActivationCode{
		Code:        newActivationCode(),
		Type:        in.Type,
		Duration:    in.Duration,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.codes.Create(ctx, c); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create code", err)
	}

	s.log.WithFields(logrus.Fields{"code": c.Code, "type": c.Type}).Info("activation code created")
	return c, nil
}

func (s *adminService) DeleteCode(ctx context.Context, code string) error {
	const op = "AdminService.DeleteCode"

	err := s.codes.Delete(ctx, code)
	if errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeNotFound, op, "code not found", err)
	}
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete code", err)
	}
	return nil
}

func (s *adminService) Stats(ctx context.Context) (*AdminStats, error) {
	const op = "AdminService.Stats"

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list users", err)
	}
	codes, err := s.codes.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list codes", err)
	}
	orderCount, err := s.orders.Count(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count orders", err)
	}
	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count products", err)
	}

	now := time.Now().UTC()
	stats := &AdminStats{
		TotalUsers:    len(users),
		TotalOrders:   orderCount,
		TotalProducts: productCount,
	}
	for i := range users {
		stats.TotalMessages += users[i].MessageCount
		if users[i].HasQuota(now) {
			stats.ActiveUsers++
		}
	}
	for i := range codes {
		if codes[i].Used {
			stats.RedeemedCodes++
		} else {
			stats.UnusedCodes++
		}
	}
	return stats, nil
}

// newActivationCode produces a short uppercase code that is easy to read
// aloud, e.g. "A1B2C3D4E5F6".
func newActivationCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:12]
}
