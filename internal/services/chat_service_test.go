package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/elzaeemwork/autoreply-backend/internal/extract"
	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/providers/llm"
	"github.com/elzaeemwork/autoreply-backend/internal/services"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

type fakeMessageRepo struct {
	rows      []models.Message
	createErr error
}

func (f *fakeMessageRepo) Create(_ context.Context, m *models.Message) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.rows = append(f.rows, *m)
	return nil
}

func (f *fakeMessageRepo) ListByUser(_ context.Context, userID string) ([]models.Message, error) {
	var out []models.Message
	for _, m := range f.rows {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) LatestN(_ context.Context, userID string, n int) ([]models.Message, error) {
	var out []models.Message
	for i := len(f.rows) - 1; i >= 0 && len(out) < n; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

type fakeOrderRepo struct {
	created   []models.Order
	createErr error
}

func (f *fakeOrderRepo) ListByUser(context.Context, string) ([]models.Order, error) {
	return f.created, nil
}

func (f *fakeOrderRepo) GetByID(context.Context, string, string) (*models.Order, error) {
	return nil, utils.ErrNotFound
}

func (f *fakeOrderRepo) Create(_ context.Context, o *models.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *o)
	return nil
}

func (f *fakeOrderRepo) UpdateFields(context.Context, string, string, map[string]any) (*models.Order, error) {
	return nil, utils.ErrNotFound
}

func (f *fakeOrderRepo) Delete(context.Context, string, string) error {
	return utils.ErrNotFound
}

func (f *fakeOrderRepo) Count(context.Context) (int64, error) {
	return int64(len(f.created)), nil
}

type fakeProductSvc struct {
	products []models.Product
	err      error
}

func (f *fakeProductSvc) List(context.Context, string) ([]models.Product, error) {
	return f.products, f.err
}

func (f *fakeProductSvc) Create(context.Context, string, *models.Product) (*models.Product, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProductSvc) Update(context.Context, string, string, map[string]any) (*models.Product, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProductSvc) Delete(context.Context, string, string) error {
	return errors.New("not implemented")
}

func (f *fakeProductSvc) SetImage(context.Context, string, string, string) (*models.Product, error) {
	return nil, errors.New("not implemented")
}

type fakeStoreSvc struct {
	profile *models.StoreProfile
	err     error
}

func (f *fakeStoreSvc) Get(context.Context, string) (*models.StoreProfile, error) {
	return f.profile, f.err
}

func (f *fakeStoreSvc) Update(context.Context, string, *models.StoreProfile) (*models.StoreProfile, error) {
	return f.profile, f.err
}

type fakeProvider struct {
	convReply string
	convErr   error
	convCalls int
	convTurns []llm.Turn

	textReply string
	textErr   error
	textCalls int
}

func (f *fakeProvider) GenerateText(_ context.Context, _ string) (string, error) {
	f.textCalls++
	return f.textReply, f.textErr
}

func (f *fakeProvider) GenerateConversation(_ context.Context, _ string, turns []llm.Turn) (string, error) {
	f.convCalls++
	f.convTurns = append([]llm.Turn(nil), turns...)
	return f.convReply, f.convErr
}

func (f *fakeProvider) Close() error { return nil }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(nopWriter{})
	return l
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func newChatFixture(msgs *fakeMessageRepo, orders *fakeOrderRepo, provider *fakeProvider, products []models.Product) services.ChatService {
	return services.NewChatService(
		msgs,
		orders,
		&fakeProductSvc{products: products},
		&fakeStoreSvc{profile: &models.StoreProfile{UserID: "u1", Name: "متجر بغداد"}},
		provider,
		quietLogger(),
	)
}

func TestHandleInboundMessageRejectsEmptyText(t *testing.T) {
	svc := newChatFixture(&fakeMessageRepo{}, &fakeOrderRepo{}, &fakeProvider{}, nil)

	_, err := svc.HandleInboundMessage(context.Background(), "u1", models.ChannelTest, "", nil)
	if err == nil {
		t.Fatal("expected error for empty message")
	}
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func TestHandleInboundMessageSingleShotOnFirstContact(t *testing.T) {
	msgs := &fakeMessageRepo{}
	provider := &fakeProvider{textReply: "هلا! شلون اكدر اساعدك؟"}
	svc := newChatFixture(msgs, &fakeOrderRepo{}, provider, nil)

	res, err := svc.HandleInboundMessage(context.Background(), "u1", models.ChannelTest, "مرحبا", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.convCalls != 0 {
		t.Fatalf("conversation path used on first contact: %d calls", provider.convCalls)
	}
	if provider.textCalls != 1 {
		t.Fatalf("expected 1 single-shot call, got %d", provider.textCalls)
	}
	if res.Reply != "هلا! شلون اكدر اساعدك؟" {
		t.Fatalf("unexpected reply %q", res.Reply)
	}
	if len(msgs.rows) != 2 {
		t.Fatalf("expected inbound+outbound persisted, got %d rows", len(msgs.rows))
	}
	if msgs.rows[0].Role != models.RoleCustomer || msgs.rows[1].Role != models.RoleGenerated {
		t.Fatalf("unexpected roles %q / %q", msgs.rows[0].Role, msgs.rows[1].Role)
	}
}

func TestHandleInboundMessageMultiTurnWithHistory(t *testing.T) {
	msgs := &fakeMessageRepo{rows: []models.Message{
		{ID: "m1", UserID: "u1", Role: models.RoleCustomer, Content: "مرحبا"},
		{ID: "m2", UserID: "u1", Role: models.RoleGenerated, Content: "هلا بيك"},
	}}
	provider := &fakeProvider{convReply: "عندنا عدة منتجات"}
	svc := newChatFixture(msgs, &fakeOrderRepo{}, provider, nil)

	res, err := svc.HandleInboundMessage(context.Background(), "u1", models.ChannelTest, "شنو عندكم؟", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.convCalls != 1 {
		t.Fatalf("expected conversation path, got %d conv calls and %d text calls", provider.convCalls, provider.textCalls)
	}
	if res.Reply != "عندنا عدة منتجات" {
		t.Fatalf("unexpected reply %q", res.Reply)
	}

	// Turns must be chronological and end with the new message.
	want := []string{"مرحبا", "هلا بيك", "شنو عندكم؟"}
	if len(provider.convTurns) != len(want) {
		t.Fatalf("expected %d turns, got %d", len(want), len(provider.convTurns))
	}
	for i, w := range want {
		if provider.convTurns[i].Content != w {
			t.Fatalf("turn %d = %q, want %q", i, provider.convTurns[i].Content, w)
		}
	}
	if provider.convTurns[0].Role != "user" || provider.convTurns[1].Role != "model" {
		t.Fatalf("unexpected turn roles %q / %q", provider.convTurns[0].Role, provider.convTurns[1].Role)
	}
}

func TestHandleInboundMessageCapsHistoryAtTenTurns(t *testing.T) {
	msgs := &fakeMessageRepo{}
	for i := 1; i <= 12; i++ {
		role := models.RoleCustomer
		if i%2 == 0 {
			role = models.RoleGenerated
		}
		msgs.rows = append(msgs.rows, models.Message{
			ID:      fmt.Sprintf("m%d", i),
			UserID:  "u1",
			Role:    role,
			Content: fmt.Sprintf("رسالة %d", i),
		})
	}
	provider := &fakeProvider{convReply: "تمام"}
	svc := newChatFixture(msgs, &fakeOrderRepo{}, provider, nil)

	if _, err := svc.HandleInboundMessage(context.Background(), "u1", models.ChannelTest, "السؤال الجديد", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 9 retained prior turns plus the new inbound message.
	if len(provider.convTurns) != 10 {
		t.Fatalf("working history = %d turns, want 10", len(provider.convTurns))
	}
	last := provider.convTurns[len(provider.convTurns)-1]
	if last.Content != "السؤال الجديد" || last.Role != "user" {
		t.Fatalf("last turn = %q (%s), want the new inbound message", last.Content, last.Role)
	}
	// Oldest retained turn is message 4; everything earlier fell off.
	if provider.convTurns[0].Content != "رسالة 4" {
		t.Fatalf("first turn = %q, want %q", provider.convTurns[0].Content, "رسالة 4")
	}
	for i := 1; i < len(provider.convTurns)-1; i++ {
		if provider.convTurns[i].Content != fmt.Sprintf("رسالة %d", i+4) {
			t.Fatalf("turn %d = %q, history not chronological", i, provider.convTurns[i].Content)
		}
	}
}

func TestHandleInboundMessageFallsBackToSingleShot(t *testing.T) {
	msgs := &fakeMessageRepo{rows: []models.Message{
		{ID: "m1", UserID: "u1", Role: models.RoleCustomer, Content: "مرحبا"},
		{ID: "m2", UserID: "u1", Role: models.RoleGenerated, Content: "هلا"},
	}}
	provider := &fakeProvider{convErr: errors.New("vertex unavailable"), textReply: "تم"}
	svc := newChatFixture(msgs, &fakeOrderRepo{}, provider, nil)

	res, err := svc.HandleInboundMessage(context.Background(), "u1", models.ChannelTest, "سؤال", nil)
	if err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	if provider.convCalls != 1 || provider.textCalls != 1 {
		t.Fatalf("expected one conv attempt then one single-shot, got %d/%d", provider.convCalls, provider.textCalls)
	}
	if res.Reply != "تم" {
		t.Fatalf("unexpected reply %q", res.Reply)
	}
}

func TestHandleInboundMessageBothPathsFail(t *testing.T) {
	msgs := &fakeMessageRepo{}
	provider := &fakeProvider{textErr: errors.New("vertex down")}
	svc := newChatFixture(msgs, &fakeOrderRepo{}, provider, nil)

	_, err := svc.HandleInboundMessage(context.Background(), "u1", models.ChannelTest, "مرحبا", nil)
	if err == nil {
		t.Fatal("expected error when generation fails entirely")
	}
	if !utils.IsCode(err, utils.CodeUnavailable) {
		t.Fatalf("expected UNAVAILABLE, got %v", err)
	}
	// The inbound message must survive the failure.
	if len(msgs.rows) != 1 || msgs.rows[0].Role != models.RoleCustomer {
		t.Fatalf("inbound message not preserved: %d rows", len(msgs.rows))
	}
}

const confirmedReply = `تمام! سجلت طلبك.
===ORDER_INFO===
PRODUCT_NAME: لابتوب ديل
QUANTITY: 2
CUSTOMER_INFO: اسمي أحمد، رقمي 0791234567، وعنواني بغداد الكرادة
NOTES: توصيل مساء
STATUS: CONFIRMED
===END_ORDER===
شكرا لك!`

func TestHandleInboundMessageCreatesConfirmedOrder(t *testing.T) {
	msgs := &fakeMessageRepo{}
	orders := &fakeOrderRepo{}
	provider := &fakeProvider{textReply: confirmedReply}
	catalog := []models.Product{{ID: "p1", UserID: "u1", Name: "لابتوب ديل", Price: "750 دولار"}}
	svc := newChatFixture(msgs, orders, provider, catalog)

	res, err := svc.HandleInboundMessage(context.Background(), "u1", models.ChannelFacebook, "اريد اطلب", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.OrderSignal != extract.SignalConfirmed {
		t.Fatalf("expected confirmed signal, got %q", res.OrderSignal)
	}
	if !res.OrderCreated {
		t.Fatal("expected order to be created")
	}
	if strings.Contains(res.Reply, "===") {
		t.Fatalf("directive block leaked into reply: %q", res.Reply)
	}
	if !strings.Contains(res.Reply, "شكرا لك!") {
		t.Fatalf("surrounding text lost: %q", res.Reply)
	}

	if len(orders.created) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders.created))
	}
	o := orders.created[0]
	if o.ProductID != "p1" {
		t.Fatalf("catalog match failed, product id %q", o.ProductID)
	}
	if o.Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", o.Quantity)
	}
	if o.TotalAmount != "1500" {
		t.Fatalf("total = %q, want 1500", o.TotalAmount)
	}
	if o.CustomerName != "أحمد" || o.CustomerPhone != "0791234567" {
		t.Fatalf("customer info = %q / %q", o.CustomerName, o.CustomerPhone)
	}
	if o.Status != models.OrderPending || o.Source != models.SourceChat {
		t.Fatalf("status/source = %q/%q", o.Status, o.Source)
	}

	var items []models.OrderItem
	if err := json.Unmarshal(o.Items, &items); err != nil || len(items) != 1 {
		t.Fatalf("items not recorded: %v (%d)", err, len(items))
	}
	if items[0].Price != "750 دولار" {
		t.Fatalf("item price = %q", items[0].Price)
	}
}

const partialNameReply = `تم تسجيل الطلب.
===ORDER_INFO===
PRODUCT_NAME: آيفون
QUANTITY: 3
CUSTOMER_INFO: اسمي أحمد، رقمي 0791234567، وعنواني بغداد الكرادة
STATUS: CONFIRMED
===END_ORDER===`

func TestHandleInboundMessageMatchesPartialProductName(t *testing.T) {
	orders := &fakeOrderRepo{}
	provider := &fakeProvider{textReply: partialNameReply}
	catalog := []models.Product{
		{ID: "p2", UserID: "u1", Name: "ساعة ذكية", Price: "100 دولار"},
		{ID: "p1", UserID: "u1", Name: "هاتف آيفون 15 برو", Price: "1200 دولار"},
	}
	svc := newChatFixture(&fakeMessageRepo{}, orders, provider, catalog)

	if _, err := svc.HandleInboundMessage(context.Background(), "u1", models.ChannelTest, "اطلب", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(orders.created) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders.created))
	}
	o := orders.created[0]
	if o.ProductID != "p1" {
		t.Fatalf("directive name %q should match catalog entry p1, got product id %q", "آيفون", o.ProductID)
	}
	if o.TotalAmount != "3600" {
		t.Fatalf("total = %q, want 3600 for qty 3 at 1200", o.TotalAmount)
	}
}

const caseInsensitiveReply = `تم!
===ORDER_INFO===
PRODUCT_NAME: IPHONE 15 PRO MAX
QUANTITY: 1
CUSTOMER_INFO: اسمي علي، رقمي 0781234567
STATUS: CONFIRMED
===END_ORDER===`

func TestHandleInboundMessageMatchesProductCaseInsensitively(t *testing.T) {
	orders := &fakeOrderRepo{}
	provider := &fakeProvider{textReply: caseInsensitiveReply}
	catalog := []models.Product{
		// The catalog name is a substring of the directive name, so this
		// also covers the reverse containment direction.
		{ID: "p1", UserID: "u1", Name: "iPhone 15 Pro", Price: "1500 دولار"},
	}
	svc := newChatFixture(&fakeMessageRepo{}, orders, provider, catalog)

	if _, err := svc.HandleInboundMessage(context.Background(), "u1", models.ChannelTest, "اطلب", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(orders.created) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders.created))
	}
	o := orders.created[0]
	if o.ProductID != "p1" {
		t.Fatalf("case-insensitive match failed, product id %q", o.ProductID)
	}
	if o.TotalAmount != "1500" {
		t.Fatalf("total = %q, want 1500", o.TotalAmount)
	}
}

func TestHandleInboundMessageUnknownProduct(t *testing.T) {
	orders := &fakeOrderRepo{}
	provider := &fakeProvider{textReply: confirmedReply}
	svc := newChatFixture(&fakeMessageRepo{}, orders, provider, []models.Product{
		{ID: "p9", UserID: "u1", Name: "ساعة ذكية", Price: "100 دولار"},
	})

	if _, err := svc.HandleInboundMessage(context.Background(), "u1", models.ChannelTest, "اطلب", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(orders.created) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders.created))
	}
	o := orders.created[0]
	if o.ProductID != models.UnknownProductID {
		t.Fatalf("product id = %q, want sentinel", o.ProductID)
	}
	if o.TotalAmount != "0" {
		t.Fatalf("total = %q, want 0", o.TotalAmount)
	}
}

func TestHandleInboundMessageSwallowsOrderPersistFailure(t *testing.T) {
	msgs := &fakeMessageRepo{}
	orders := &fakeOrderRepo{createErr: errors.New("db down")}
	provider := &fakeProvider{textReply: confirmedReply}
	svc := newChatFixture(msgs, orders, provider, nil)

	res, err := svc.HandleInboundMessage(context.Background(), "u1", models.ChannelTest, "اطلب", nil)
	if err != nil {
		t.Fatalf("order persist failure must not fail the request: %v", err)
	}
	if res.OrderCreated {
		t.Fatal("order_created should be false")
	}
	if res.OrderSignal != extract.SignalConfirmed {
		t.Fatalf("signal should survive, got %q", res.OrderSignal)
	}
	if strings.Contains(res.Reply, "===") {
		t.Fatalf("reply should still be stripped: %q", res.Reply)
	}
	if len(msgs.rows) != 2 {
		t.Fatalf("reply should still be persisted, got %d rows", len(msgs.rows))
	}
}

func TestHandleInboundMessagePendingDirectiveCreatesNoOrder(t *testing.T) {
	orders := &fakeOrderRepo{}
	provider := &fakeProvider{textReply: "اكيد!\n===ORDER_PENDING===\nPRODUCT_NAME: لابتوب\nSTATUS: WAITING_FOR_INFO\n===END_ORDER===\nبس احتاج رقمك"}
	svc := newChatFixture(&fakeMessageRepo{}, orders, provider, nil)

	res, err := svc.HandleInboundMessage(context.Background(), "u1", models.ChannelTest, "اريد لابتوب", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OrderSignal != extract.SignalPending {
		t.Fatalf("expected pending signal, got %q", res.OrderSignal)
	}
	if res.OrderCreated || len(orders.created) != 0 {
		t.Fatal("pending directive must not create an order")
	}
	if strings.Contains(res.Reply, "===") {
		t.Fatalf("pending block leaked: %q", res.Reply)
	}
}

func TestStatsAggregatesByRoleChannelAndDate(t *testing.T) {
	msgs := &fakeMessageRepo{}
	provider := &fakeProvider{textReply: "هلا"}
	svc := newChatFixture(msgs, &fakeOrderRepo{}, provider, nil)

	ctx := context.Background()
	if _, err := svc.HandleInboundMessage(ctx, "u1", models.ChannelFacebook, "مرحبا", nil); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	stats, err := svc.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalMessages != 2 || stats.CustomerMessages != 1 || stats.GeneratedMessages != 1 {
		t.Fatalf("totals = %d/%d/%d", stats.TotalMessages, stats.CustomerMessages, stats.GeneratedMessages)
	}
	if stats.ByChannel["facebook"] != 2 {
		t.Fatalf("by_channel = %v", stats.ByChannel)
	}
}
