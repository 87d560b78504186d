package redisstate

import (
	"fmt"
	"strings"

	"newslive/internal/domain"
)

// DefaultKeyPrefix 是未配置 REDIS_KEY_PREFIX 时使用的 key 前缀。
const DefaultKeyPrefix = "newslive:"

// keySpace 统一生成所有 Redis key，方便按前缀隔离环境。
type keySpace struct {
	prefix string
}

func newKeySpace(prefix string) keySpace {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return keySpace{prefix: prefix}
}

// --- Key Generation Helpers ---

func (k keySpace) article(id string) string {
	return fmt.Sprintf("%sarticle:%s", k.prefix, id)
}

func (k keySpace) articlesByDate() string {
	return k.prefix + "articles:by_date"
}

func (k keySpace) articlesByCategory(category domain.Category) string {
	return fmt.Sprintf("%sarticles:category:%s", k.prefix, category)
}

func (k keySpace) user(id string) string {
	return fmt.Sprintf("%suser:%s", k.prefix, id)
}

func (k keySpace) userEmail(email string) string {
	return fmt.Sprintf("%suser:email:%s", k.prefix, strings.ToLower(strings.TrimSpace(email)))
}

func (k keySpace) users() string {
	return k.prefix + "users"
}

func (k keySpace) session(token string) string {
	return fmt.Sprintf("%ssession:%s", k.prefix, token)
}
