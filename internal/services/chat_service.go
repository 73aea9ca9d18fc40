package services

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/elzaeemwork/autoreply-backend/internal/extract"
	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/providers/llm"
	pgrepo "github.com/elzaeemwork/autoreply-backend/internal/repositories/postgres"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// historyPairs is how many recent exchange pairs feed the generation
// context. Fixed tunable, not user-configurable.
const historyPairs = 5

// ChatResult is what a channel adapter gets back for one inbound message.
type ChatResult struct {
	Reply        string
	MessageID    string
	Timestamp    time.Time
	OrderSignal  extract.OrderSignal // "" when the reply carried no directive
	OrderCreated bool
}

type ChatService interface {
	// HandleInboundMessage runs the whole pipeline for one customer
	// message: persist it, build context, generate, parse the directive,
	// maybe create an order, persist the reply.
	HandleInboundMessage(ctx context.Context, userID string, channel models.Channel, text string, metadata map[string]any) (*ChatResult, error)
	History(ctx context.Context, userID string) ([]models.Message, error)
	Stats(ctx context.Context, userID string) (*MessageStats, error)
}

type chatService struct {
	messages pgrepo.MessageRepository
	orders   pgrepo.OrderRepository
	products ProductService
	stores   StoreService
	provider llm.Provider
	log      *logrus.Logger
}

func NewChatService(messages pgrepo.MessageRepository, orders pgrepo.OrderRepository, products ProductService, stores StoreService, provider llm.Provider, log *logrus.Logger) ChatService {
	return &chatService{
		messages: messages,
		orders:   orders,
		products: products,
		stores:   stores,
		provider: provider,
		log:      log,
	}
}

func (s *chatService) HandleInboundMessage(ctx context.Context, userID string, channel models.Channel, text string, metadata map[string]any) (*ChatResult, error) {
	const op = "ChatService.HandleInboundMessage"

	if userID == "" || text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and message are required", nil)
	}
	if channel == "" {
		channel = models.ChannelTest
	}

	// The customer's utterance is recorded before anything fallible runs,
	// so a downstream failure never loses it.
	inbound := &models.Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Channel:   channel,
		Role:      models.RoleCustomer,
		Content:   text,
		Metadata:  marshalMetadata(metadata),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, inbound); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist inbound message", err)
	}

	products, err := s.products.List(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("catalog read failed; generating without products")
		products = nil
	}
	store, err := s.stores.Get(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("store profile read failed; generating without store context")
		store = nil
	}
	prior := s.priorHistory(ctx, userID, inbound.ID)

	// Working history is the persisted copy of the inbound message appended
	// to the prior turns.
	working := append(append([]models.Message{}, prior...), *inbound)

	reply, err := s.generate(ctx, text, products, store, prior, working)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "response generation failed", err)
	}

	stripped, directive := extract.ParseDirective(reply)

	var signal extract.OrderSignal
	created := false
	if directive != nil {
		signal = directive.Signal
		if directive.Signal == extract.SignalConfirmed {
			order := buildChatOrder(userID, products, directive)
			if err := s.orders.Create(ctx, order); err != nil {
				// Best-effort, at-most-once: the customer still gets the
				// reply; the lost order is only observable in logs.
				s.log.WithError(err).WithFields(logrus.Fields{
					"user_id": userID,
					"product": directive.ProductName,
				}).Error("failed to persist chat order")
			} else {
				created = true
				s.log.WithFields(logrus.Fields{
					"user_id":  userID,
					"order_id": order.ID,
				}).Info("chat order created")
			}
		}
	}

	outbound := &models.Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Channel:   channel,
		Role:      models.RoleGenerated,
		Content:   stripped,
		Metadata:  marshalMetadata(metadata),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, outbound); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist reply", err)
	}

	return &ChatResult{
		Reply:        stripped,
		MessageID:    outbound.ID,
		Timestamp:    outbound.CreatedAt,
		OrderSignal:  signal,
		OrderCreated: created,
	}, nil
}

// priorHistory returns the recent turns in chronological order, excluding
// the just-persisted inbound message. History read failures degrade to an
// empty context rather than failing the request.
func (s *chatService) priorHistory(ctx context.Context, userID, excludeID string) []models.Message {
	rows, err := s.messages.LatestN(ctx, userID, historyPairs*2)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("history read failed; generating without history")
		return nil
	}

	out := make([]models.Message, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- { // newest-first -> oldest-first
		if rows[i].ID == excludeID {
			continue
		}
		out = append(out, rows[i])
	}
	return out
}

// generate picks the multi-turn path when the working history holds at
// least two entries, falling back to the single-shot prompt on any error
// from the conversation call. No retries anywhere, a single substitution.
func (s *chatService) generate(ctx context.Context, text string, products []models.Product, store *models.StoreProfile, prior, working []models.Message) (string, error) {
	if len(working) >= 2 {
		system := llm.ConversationSystem(products, store)
		reply, err := s.provider.GenerateConversation(ctx, system, asTurns(working))
		if err == nil {
			return reply, nil
		}
		s.log.WithError(err).Warn("conversation generation failed; falling back to single-shot")
	}
	return s.provider.GenerateText(ctx, llm.SinglePrompt(text, products, asTurns(prior), store))
}

func asTurns(msgs []models.Message) []llm.Turn {
	turns := make([]llm.Turn, 0, len(msgs))
	for _, m := range msgs {
		role := "model"
		if m.Role == models.RoleCustomer {
			role = "user"
		}
		turns = append(turns, llm.Turn{Role: role, Content: m.Content})
	}
	return turns
}

var numericToken = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// totalAmount multiplies the first numeric token of the price text by the
// quantity. "0" when the price holds no number.
func totalAmount(priceText string, quantity int) string {
	m := numericToken.FindStringSubmatch(priceText)
	if m == nil || quantity <= 0 {
		return "0"
	}
	price, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return "0"
	}
	return strconv.FormatFloat(price*float64(quantity), 'f', -1, 64)
}

// matchProduct picks the first catalog entry whose name is a
// case-insensitive substring of the directive's product name, or vice
// versa.
func matchProduct(products []models.Product, name string) *models.Product {
	needle := strings.ToLower(name)
	for i := range products {
		candidate := strings.ToLower(products[i].Name)
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return &products[i]
		}
	}
	return nil
}

// buildChatOrder materializes a confirmed directive into an order row.
// Items and total amount are derived here, once, and never recomputed.
func buildChatOrder(userID string, products []models.Product, d *extract.Directive) *models.Order {
	info := extract.ParseCustomerInfo(d.CustomerInfo)

	productID := models.UnknownProductID
	price := "0"
	total := "0"
	if p := matchProduct(products, d.ProductName); p != nil {
		productID = p.ID
		price = p.Price
		total = totalAmount(p.Price, d.Quantity)
	}

	items, _ := json.Marshal([]models.OrderItem{{
		ProductID:   productID,
		ProductName: d.ProductName,
		Quantity:    d.Quantity,
		Price:       price,
	}})

	return &models.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		ProductID:       productID,
		ProductName:     d.ProductName,
		Quantity:        d.Quantity,
		CustomerName:    info.Name,
		CustomerPhone:   info.Phone,
		CustomerAddress: info.Address,
		TotalAmount:     total,
		Notes:           d.Notes,
		Status:          models.OrderPending,
		Source:          models.SourceChat,
		PaymentMethod:   "cash",
		Items:           datatypes.JSON(items),
		CreatedAt:       time.Now().UTC(),
	}
}

func marshalMetadata(metadata map[string]any) datatypes.JSON {
	if len(metadata) == 0 {
		return datatypes.JSON([]byte("{}"))
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(b)
}

func (s *chatService) History(ctx context.Context, userID string) ([]models.Message, error) {
	const op = "ChatService.History"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	rows, err := s.messages.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list messages", err)
	}
	return rows, nil
}

// MessageStats aggregates a user's message history for the dashboard.
type MessageStats struct {
	TotalMessages     int            `json:"total_messages"`
	CustomerMessages  int            `json:"customer_messages"`
	GeneratedMessages int            `json:"generated_messages"`
	ByChannel         map[string]int `json:"by_channel"`
	ByDate            map[string]int `json:"by_date"`
}

func (s *chatService) Stats(ctx context.Context, userID string) (*MessageStats, error) {
	rows, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &MessageStats{
		ByChannel: map[string]int{},
		ByDate:    map[string]int{},
	}
	for _, m := range rows {
		stats.TotalMessages++
		switch m.Role {
		case models.RoleCustomer:
			stats.CustomerMessages++
		case models.RoleGenerated:
			stats.GeneratedMessages++
		}
		stats.ByChannel[string(m.Channel)]++
		stats.ByDate[m.CreatedAt.UTC().Format("2006-01-02")]++
	}
	return stats, nil
}
