package workers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/elzaeemwork/autoreply-backend/internal/messenger"
	"github.com/elzaeemwork/autoreply-backend/internal/models"
	mongorepo "github.com/elzaeemwork/autoreply-backend/internal/repositories/mongo"
	"github.com/elzaeemwork/autoreply-backend/internal/services"
)

// WebhookStream is the Redis stream webhook events flow through.
const WebhookStream = "webhook:events"

// WebhookWorkerPool drains Messenger events off the stream, resolves each
// page to its tenant, runs the chat pipeline, and pushes the reply back to
// the platform.
type WebhookWorkerPool struct {
	Redis       *redis.Client
	Credentials mongorepo.PageCredentialRepository
	Chat        services.ChatService
	Sender      messenger.Sender
	NumWorkers  int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *WebhookWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Credentials == nil || p.Chat == nil || p.Sender == nil {
		return errors.New("WebhookWorkerPool missing dependency: Redis/Credentials/Chat/Sender must be set")
	}
	if p.Stream == "" {
		p.Stream = WebhookStream
	}
	if p.Group == "" {
		p.Group = "webhook-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 5
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *WebhookWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *WebhookWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	pageID := getStr("page_id")
	senderID := getStr("sender_id")
	text := getStr("text")
	if pageID == "" || senderID == "" || text == "" {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":  msg.ID,
		"page_id":   pageID,
		"sender_id": senderID,
	})

	cred, account, err := p.Credentials.ResolvePage(ctx, pageID)
	if err != nil {
		log.WithError(err).Warn("no tenant connected for page; dropping event")
		return
	}

	res, err := p.Chat.HandleInboundMessage(ctx, cred.UserID, models.ChannelFacebook, text, map[string]any{
		"page_id":   pageID,
		"sender_id": senderID,
		"mid":       getStr("mid"),
	})
	if err != nil {
		log.WithError(err).Error("chat pipeline failed for webhook event")
		return
	}

	if err := p.Sender.SendText(ctx, account.AccessToken, senderID, res.Reply); err != nil {
		log.WithError(err).Error("failed to deliver reply to messenger")
		return
	}

	log.WithFields(logrus.Fields{
		"user_id":       cred.UserID,
		"order_created": res.OrderCreated,
	}).Info("webhook event handled")
}
