package domain

// EventNewArticle 既是频道消息的 type 标签，也是推送给客户端的事件名。
const EventNewArticle = "new_article"

// NewArticleMessage 是广播频道上传递的消息。
type NewArticleMessage struct {
	Type    string  `json:"type"`
	Article Article `json:"article"`
}

// RealtimeEvent 是 Gateway 推送给 WebSocket 客户端的帧。
type RealtimeEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}
