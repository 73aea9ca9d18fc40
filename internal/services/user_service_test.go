package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/services"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
)

type fakeUserRepo struct {
	byID map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo { return &fakeUserRepo{byID: map[string]*models.User{}} }

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeUserRepo) List(context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateFields(_ context.Context, id string, fields map[string]any) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "message_count":
			u.MessageCount = v.(int)
		case "free_messages_remaining":
			u.FreeMessagesRemaining = v.(int)
		case "activation_code":
			u.ActivationCode = v.(string)
		case "activation_expiry":
			t := v.(time.Time)
			u.ActivationExpiry = &t
		case "activation_type":
			u.ActivationType = v.(models.ActivationType)
		}
	}
	cp := *u
	return &cp, nil
}

type fakeCodeRepo struct {
	byCode map[string]*models.ActivationCode
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{byCode: map[string]*models.ActivationCode{}}
}

func (f *fakeCodeRepo) List(context.Context) ([]models.ActivationCode, error) {
	var out []models.ActivationCode
	for _, c := range f.byCode {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCodeRepo) Create(_ context.Context, c *models.ActivationCode) error {
	cp := *c
	f.byCode[c.Code] = &cp
	return nil
}

func (f *fakeCodeRepo) GetUnused(_ context.Context, code string) (*models.ActivationCode, error) {
	c, ok := f.byCode[code]
	if !ok || c.Used {
		return nil, utils.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCodeRepo) MarkUsed(_ context.Context, code, userID string, at time.Time) error {
	c, ok := f.byCode[code]
	if !ok || c.Used {
		return utils.ErrNotFound
	}
	c.Used = true
	c.UsedBy = userID
	c.UsedAt = &at
	return nil
}

func (f *fakeCodeRepo) Delete(_ context.Context, code string) error {
	if _, ok := f.byCode[code]; !ok {
		return utils.ErrNotFound
	}
	delete(f.byCode, code)
	return nil
}

const testSecret = "test-secret"

func TestRegisterGrantsFreeAllowanceAndToken(t *testing.T) {
	users := newFakeUserRepo()
	svc := services.NewUserService(users, newFakeCodeRepo(), testSecret, quietLogger())

	res, err := svc.Register(context.Background(), services.RegisterInput{
		Username: "ahmad",
		Password: "s3cret",
		Name:     "أحمد",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.User.FreeMessagesRemaining != 50 {
		t.Fatalf("free allowance = %d, want 50", res.User.FreeMessagesRemaining)
	}
	if res.Token == "" {
		t.Fatal("expected a session token")
	}
	if res.User.Password == "s3cret" {
		t.Fatal("password stored in plaintext")
	}

	claims, err := utils.ParseToken(testSecret, res.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != res.User.ID || claims.Role != "user" {
		t.Fatalf("claims = %q/%q", claims.Subject, claims.Role)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	users := newFakeUserRepo()
	svc := services.NewUserService(users, newFakeCodeRepo(), testSecret, quietLogger())
	ctx := context.Background()

	if _, err := svc.Register(ctx, services.RegisterInput{Username: "ahmad", Password: "x"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	_, err := svc.Register(ctx, services.RegisterInput{Username: "ahmad", Password: "y"})
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestLoginVerifiesPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := services.NewUserService(users, newFakeCodeRepo(), testSecret, quietLogger())
	ctx := context.Background()

	if _, err := svc.Register(ctx, services.RegisterInput{Username: "ahmad", Password: "s3cret"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, err := svc.Login(ctx, "ahmad", "s3cret"); err != nil {
		t.Fatalf("valid login failed: %v", err)
	}
	if _, err := svc.Login(ctx, "ahmad", "wrong"); !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if _, err := svc.Login(ctx, "ghost", "s3cret"); !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED for unknown user, got %v", err)
	}
}

func TestActivateExtendsQuotaWindow(t *testing.T) {
	users := newFakeUserRepo()
	codes := newFakeCodeRepo()
	svc := services.NewUserService(users, codes, testSecret, quietLogger())
	ctx := context.Background()

	res, err := svc.Register(ctx, services.RegisterInput{Username: "ahmad", Password: "x"})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	_ = codes.Create(ctx, &models.ActivationCode{Code: "FULL30", Type: models.ActivationFull})

	u, err := svc.Activate(ctx, res.User.ID, "FULL30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ActivationExpiry == nil {
		t.Fatal("activation expiry not set")
	}
	days := time.Until(*u.ActivationExpiry).Hours() / 24
	if days < 29 || days > 31 {
		t.Fatalf("full code should grant ~30 days, got %.1f", days)
	}
	if u.ActivationType != models.ActivationFull {
		t.Fatalf("activation type = %q", u.ActivationType)
	}

	// One-shot: second redemption fails.
	if _, err := svc.Activate(ctx, res.User.ID, "FULL30"); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND on reuse, got %v", err)
	}
}

func TestActivateRespectsExplicitDuration(t *testing.T) {
	users := newFakeUserRepo()
	codes := newFakeCodeRepo()
	svc := services.NewUserService(users, codes, testSecret, quietLogger())
	ctx := context.Background()

	res, _ := svc.Register(ctx, services.RegisterInput{Username: "ahmad", Password: "x"})
	_ = codes.Create(ctx, &models.ActivationCode{Code: "T90", Type: models.ActivationTemp, Duration: 90})

	u, err := svc.Activate(ctx, res.User.ID, "T90")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	days := time.Until(*u.ActivationExpiry).Hours() / 24
	if days < 89 || days > 91 {
		t.Fatalf("expected ~90 days, got %.1f", days)
	}
}

func TestConsumeQuotaTransitions(t *testing.T) {
	users := newFakeUserRepo()
	svc := services.NewUserService(users, newFakeCodeRepo(), testSecret, quietLogger())
	ctx := context.Background()

	res, _ := svc.Register(ctx, services.RegisterInput{Username: "ahmad", Password: "x"})
	id := res.User.ID

	// Drain the free allowance.
	users.byID[id].FreeMessagesRemaining = 1
	if err := svc.ConsumeQuota(ctx, id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if users.byID[id].FreeMessagesRemaining != 0 {
		t.Fatalf("allowance = %d, want 0", users.byID[id].FreeMessagesRemaining)
	}
	if users.byID[id].MessageCount != 1 {
		t.Fatalf("message count = %d, want 1", users.byID[id].MessageCount)
	}

	// Exhausted, no activation window.
	if err := svc.ConsumeQuota(ctx, id); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}

	// Open activation window lets requests through again.
	expiry := time.Now().Add(24 * time.Hour)
	users.byID[id].ActivationExpiry = &expiry
	if err := svc.ConsumeQuota(ctx, id); err != nil {
		t.Fatalf("activated user should pass: %v", err)
	}

	// Expired window blocks again.
	expired := time.Now().Add(-time.Hour)
	users.byID[id].ActivationExpiry = &expired
	if err := svc.ConsumeQuota(ctx, id); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN after expiry, got %v", err)
	}
}
