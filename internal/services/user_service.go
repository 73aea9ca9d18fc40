package services

import (
	"context"
	"errors"
	"time"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	pgrepo "github.com/elzaeemwork/autoreply-backend/internal/repositories/postgres"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const freeMessageAllowance = 50

// Default activation windows in days, used when a code carries no explicit
// duration.
const (
	tempActivationDays = 7
	fullActivationDays = 30
)

type RegisterInput struct {
	Username string
	Password string
	Email    string
	Name     string
}

// AuthResult pairs a user with a freshly issued session token.
type AuthResult struct {
	User  *models.User
	Token string
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Get(ctx context.Context, userID string) (*models.User, error)
	// Activate redeems a one-shot code and extends the user's quota window.
	Activate(ctx context.Context, userID, code string) (*models.User, error)
	// ConsumeQuota decrements the free allowance or verifies the activation
	// window before a chat message may be generated.
	ConsumeQuota(ctx context.Context, userID string) error
}

type userService struct {
	users     pgrepo.UserRepository
	codes     pgrepo.ActivationCodeRepository
	jwtSecret string
	log       *logrus.Logger
}

func NewUserService(users pgrepo.UserRepository, codes pgrepo.ActivationCodeRepository, jwtSecret string, log *logrus.Logger) UserService {
	return &userService{users: users, codes: codes, jwtSecret: jwtSecret, log: log}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	const op = "UserService.Register"

	if in.Username == "" || in.Password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "username and password are required", nil)
	}

	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, utils.E(utils.CodeConflict, op, "username already taken", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check username", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:                    uuid.NewString(),
		Username:              in.Username,
		Password:              hash,
		Email:                 in.Email,
		Name:                  in.Name,
		FreeMessagesRemaining: freeMessageAllowance,
		ActivationType:        models.ActivationTemp,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create user", err)
	}

	token, err := utils.IssueToken(s.jwtSecret, u.ID, "user", now)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}

	s.log.WithField("user_id", u.ID).Info("user registered")
	return &AuthResult{User: u, Token: token}, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	const op = "UserService.Login"

	if username == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "username and password are required", nil)
	}

	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	if err := utils.CheckPassword(u.Password, password); err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
	}

	token, err := utils.IssueToken(s.jwtSecret, u.ID, "user", time.Now().UTC())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (s *userService) Get(ctx context.Context, userID string) (*models.User, error) {
	const op = "UserService.Get"

	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	return u, nil
}

func (s *userService) Activate(ctx context.Context, userID, code string) (*models.User, error) {
	const op = "UserService.Activate"

	if code == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "code is required", nil)
	}

	c, err := s.codes.GetUnused(ctx, code)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "invalid or already used code", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to look up code", err)
	}

	days := c.Duration
	if days <= 0 {
		days = tempActivationDays
		if c.Type == models.ActivationFull {
			days = fullActivationDays
		}
	}

	now := time.Now().UTC()
	expiry := now.Add(time.Duration(days) * 24 * time.Hour)

	if err := s.codes.MarkUsed(ctx, code, userID, now); err != nil {
		// Lost the race with another redeemer.
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeConflict, op, "code already used", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to redeem code", err)
	}

	u, err := s.users.UpdateFields(ctx, userID, map[string]any{
		"activation_code":   code,
		"activation_expiry": expiry,
		"activation_type":   c.Type,
		"updated_at":        now,
	})
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to apply activation", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"type":    c.Type,
		"days":    days,
	}).Info("activation code redeemed")
	return u, nil
}

func (s *userService) ConsumeQuota(ctx context.Context, userID string) error {
	const op = "UserService.ConsumeQuota"

	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeUnauthorized, op, "user not found", err)
	}
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to load user", err)
	}

	now := time.Now().UTC()
	if !u.HasQuota(now) {
		return utils.E(utils.CodeForbidden, op, "message quota exhausted, activation required", nil)
	}

	fields := map[string]any{
		"message_count": u.MessageCount + 1,
		"updated_at":    now,
	}
	if u.FreeMessagesRemaining > 0 {
		fields["free_messages_remaining"] = u.FreeMessagesRemaining - 1
	}
	if _, err := s.users.UpdateFields(ctx, userID, fields); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to record quota use", err)
	}
	return nil
}
