package redisstate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"newslive/internal/domain"
	"newslive/internal/repository"
)

// DefaultNewsChannel 是新文章通知使用的广播频道
const DefaultNewsChannel = "news_updates"

// NewsPublisher 把新文章事件发布到 Redis Pub/Sub 频道。
// Pub/Sub 不持久化消息: 发布时不在线的订阅者收不到，也没有重放。
type NewsPublisher struct {
	client  *redis.Client
	channel string
}

var _ repository.ArticleEventPublisher = (*NewsPublisher)(nil)

// NewNewsPublisher 创建 NewsPublisher 实例
func NewNewsPublisher(client *redis.Client, channel string) *NewsPublisher {
	if client == nil {
		panic("redis client cannot be nil for NewsPublisher")
	}
	if channel == "" {
		channel = DefaultNewsChannel
	}
	return &NewsPublisher{client: client, channel: channel}
}

// Channel 返回发布使用的频道名
func (p *NewsPublisher) Channel() string { return p.channel }

// PublishNewArticle 发布 {type: "new_article", article} 消息
func (p *NewsPublisher) PublishNewArticle(ctx context.Context, article domain.Article) error {
	payloadBytes, err := json.Marshal(domain.NewArticleMessage{
		Type:    domain.EventNewArticle,
		Article: article,
	})
	if err != nil {
		return fmt.Errorf("redis: failed to marshal new_article message (article id %s): %w", article.ID, err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, payloadBytes).Result()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"channel":      p.channel,
			"payload_size": len(payloadBytes),
			"article_id":   article.ID,
		}).WithError(err).Error("Redis Publish failed")
		return fmt.Errorf("redis: failed to publish to channel %s: %w", p.channel, err)
	}
	logrus.WithFields(logrus.Fields{
		"channel":    p.channel,
		"article_id": article.ID,
		"receivers":  receivers,
	}).Debug("Published new article")
	return nil
}
