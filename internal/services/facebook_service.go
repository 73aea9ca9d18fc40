package services

import (
	"context"
	"errors"
	"time"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	mongorepo "github.com/elzaeemwork/autoreply-backend/internal/repositories/mongo"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
)

// FacebookService manages a tenant's page connection: the OAuth material
// the webhook worker later uses to route events and send replies.
type FacebookService interface {
	SaveConnection(ctx context.Context, cred *models.PageCredential) error
	GetConnection(ctx context.Context, userID string) (*models.PageCredential, error)
	Disconnect(ctx context.Context, userID string) error
}

type facebookService struct {
	creds mongorepo.PageCredentialRepository
}

func NewFacebookService(creds mongorepo.PageCredentialRepository) FacebookService {
	return &facebookService{creds: creds}
}

func (s *facebookService) SaveConnection(ctx context.Context, cred *models.PageCredential) error {
	const op = "FacebookService.SaveConnection"

	if cred.UserID == "" || cred.AccessToken == "" {
		return utils.E(utils.CodeInvalidArgument, op, "user_id and access_token are required", nil)
	}
	if len(cred.Accounts) == 0 {
		return utils.E(utils.CodeInvalidArgument, op, "at least one page account is required", nil)
	}
	cred.ConnectedAt = time.Now().UTC()

	if err := s.creds.Save(ctx, cred); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to save connection", err)
	}
	return nil
}

func (s *facebookService) GetConnection(ctx context.Context, userID string) (*models.PageCredential, error) {
	const op = "FacebookService.GetConnection"

	cred, err := s.creds.GetByUserID(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "no facebook connection", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load connection", err)
	}
	return cred, nil
}

func (s *facebookService) Disconnect(ctx context.Context, userID string) error {
	const op = "FacebookService.Disconnect"

	err := s.creds.Delete(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeNotFound, op, "no facebook connection", err)
	}
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to remove connection", err)
	}
	return nil
}
