package tasks

import (
	"encoding/json"
	"time"
)

// 任务类型常量
const (
	TypeIndexAudit = "index:audit" // 文章索引巡检
)

// IndexAuditPayload 是索引巡检任务的数据结构。
// 巡检本身不需要参数，RegisteredAt 记录调度注册的时间，只用于日志排查。
type IndexAuditPayload struct {
	RegisteredAt time.Time `json:"registeredAt"`
}

// NewIndexAuditTask 序列化一个索引巡检任务的 payload
func NewIndexAuditTask(now time.Time) ([]byte, error) {
	payloadBytes, err := json.Marshal(IndexAuditPayload{RegisteredAt: now.UTC()})
	if err != nil {
		return nil, err
	}
	return payloadBytes, nil
}
