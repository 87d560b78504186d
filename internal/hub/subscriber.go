package hub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"newslive/internal/domain"
	"newslive/internal/metrics"
)

// NewsSubscriber 持有一个 Redis 订阅，把频道上的 new_article 消息转发给 Hub。
// 订阅在进程生命周期内保持，断线后由 go-redis 自动重新订阅；
// 断线期间发布的消息会丢失。
type NewsSubscriber struct {
	client  *redis.Client
	channel string
	hub     *Hub
}

// NewNewsSubscriber 创建 NewsSubscriber 实例
func NewNewsSubscriber(client *redis.Client, channel string, hub *Hub) *NewsSubscriber {
	if client == nil {
		panic("redis client cannot be nil for NewsSubscriber")
	}
	if hub == nil {
		panic("Hub cannot be nil for NewsSubscriber")
	}
	return &NewsSubscriber{client: client, channel: channel, hub: hub}
}

// Run 订阅频道并阻塞处理消息，直到 ctx 被取消。
// 订阅确认失败时返回错误。
func (s *NewsSubscriber) Run(ctx context.Context) error {
	logCtx := logrus.WithFields(logrus.Fields{"component": "news_subscriber", "channel": s.channel})

	pubsub := s.client.Subscribe(ctx, s.channel)
	defer func() {
		if err := pubsub.Close(); err != nil {
			logCtx.WithError(err).Warn("Failed to close subscription")
		}
	}()

	// 等待订阅确认，确保之后发布的消息不会错过
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis: failed to subscribe to channel %s: %w", s.channel, err)
	}
	logCtx.Info("Subscribed to news channel")

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			logCtx.Info("News subscriber stopping")
			return nil
		case msg, ok := <-messages:
			if !ok {
				logCtx.Info("Subscription channel closed")
				return nil
			}
			s.handleMessage(msg.Payload)
		}
	}
}

func (s *NewsSubscriber) handleMessage(payload string) {
	var message domain.NewArticleMessage
	if err := json.Unmarshal([]byte(payload), &message); err != nil {
		metrics.RealtimeEventsTotal.WithLabelValues("unknown", "malformed").Inc()
		logrus.WithError(err).WithField("payload_size", len(payload)).Warn("Skipping malformed news message")
		return
	}
	if message.Type != domain.EventNewArticle {
		metrics.RealtimeEventsTotal.WithLabelValues("unknown", "ignored").Inc()
		logrus.WithField("type", message.Type).Warn("Skipping news message with unknown type")
		return
	}
	if err := s.hub.Broadcast(domain.EventNewArticle, message.Article); err != nil {
		logrus.WithError(err).WithField("article_id", message.Article.ID).Error("Failed to broadcast new article")
	}
}
