package hub

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"newslive/internal/domain"
	"newslive/internal/metrics"
)

// 包级别的 WebSocket 常量，供 hub 和 client 使用
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. 网关只推送，客户端消息只用于保活
	maxMessageSize = 512

	// 每个客户端的发送缓冲，满了之后新事件会被丢弃
	sendBufferSize = 64
)

// HubMessage 定义了在 Hub 内部通道传递的消息类型
type HubMessage struct {
	Type    string  // "register", "unregister", "broadcast"
	Client  *Client // 仅用于 register/unregister
	Event   string  // 仅用于 broadcast，用于日志和指标
	Payload []byte  // 仅用于 broadcast
}

// Hub 维护已连接的 WebSocket 客户端并向它们广播事件。
// 所有客户端收到同样的事件，没有按客户端过滤，没有确认，也没有重放:
// 注册之前发生的事件，客户端永远收不到。
type Hub struct {
	// 内部通道，注册、注销和广播都在 Run 循环里按顺序处理
	messageChan chan HubMessage

	clients   map[*Client]bool
	clientsMu sync.RWMutex

	quit     chan struct{}
	stopOnce sync.Once
}

// NewHub 创建并返回一个新的 Hub 实例
func NewHub() *Hub {
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		clients:     make(map[*Client]bool),
		quit:        make(chan struct{}),
	}
}

// Run 启动 Hub 的主事件处理循环，直到 Stop 被调用。
// 它应该在一个单独的 goroutine 中运行。
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for {
		select {
		case msg := <-h.messageChan:
			switch msg.Type {
			case "register":
				h.registerClient(msg.Client)
			case "unregister":
				h.unregisterClient(msg.Client)
			case "broadcast":
				h.broadcast(msg.Event, msg.Payload)
			default:
				log.Warnf("Hub: Received unknown message type: %s", msg.Type)
			}
		case <-h.quit:
			h.disconnectAll()
			log.Info("Hub is shutting down...")
			return
		}
	}
}

// Stop 让 Run 退出并关闭所有客户端的发送通道，可以重复调用
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// QueueMessage 将消息放入 Hub 的处理队列 (非阻塞)。
// 队列已满或 Hub 已停止时返回 false。
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case <-h.quit:
		return false
	default:
	}
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithField("message_type", msg.Type).Warn("Hub message channel full, dropping message")
		return false
	}
}

// Register 请求 Hub 注册客户端
func (h *Hub) Register(client *Client) bool {
	return h.QueueMessage(HubMessage{Type: "register", Client: client})
}

// Broadcast 把 {"event": event, "data": data} 推送给当前所有已连接的客户端
func (h *Hub) Broadcast(event string, data interface{}) error {
	payload, err := json.Marshal(domain.RealtimeEvent{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("hub: failed to marshal %s event: %w", event, err)
	}
	if !h.QueueMessage(HubMessage{Type: "broadcast", Event: event, Payload: payload}) {
		return fmt.Errorf("hub: %s event not queued", event)
	}
	return nil
}

// ClientCount 返回当前已注册的客户端数量
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// registerClient 处理客户端注册逻辑
func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return
	}
	h.clientsMu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.clientsMu.Unlock()

	metrics.RealtimeClients.Set(float64(count))
	logrus.WithFields(logrus.Fields{
		"client_id":    client.ID(),
		"client_count": count,
	}).Info("Client registered to Hub")
}

// unregisterClient 处理客户端注销逻辑。send 通道只在这里和 disconnectAll 中关闭，
// 并且只对仍在集合中的客户端关闭，因此不会重复关闭。
func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to unregister a nil client")
		return
	}
	logCtx := logrus.WithField("client_id", client.ID())

	h.clientsMu.Lock()
	_, exists := h.clients[client]
	if exists {
		delete(h.clients, client)
		close(client.send)
	}
	count := len(h.clients)
	h.clientsMu.Unlock()

	if !exists {
		logCtx.Debug("Client already unregistered")
		return
	}
	metrics.RealtimeClients.Set(float64(count))
	logCtx.WithField("client_count", count).Info("Client unregistered from Hub")
}

// broadcast 将消息发送给所有客户端，发送缓冲已满的客户端会错过这条消息
func (h *Hub) broadcast(event string, message []byte) {
	h.clientsMu.RLock()
	delivered, dropped := 0, 0
	for client := range h.clients {
		// 使用非阻塞发送，避免单个慢客户端阻塞广播
		select {
		case client.send <- message:
			delivered++
		default:
			dropped++
			logrus.WithField("client_id", client.ID()).Warn("Client send channel full during broadcast, skipping this client")
		}
	}
	h.clientsMu.RUnlock()

	metrics.ObserveBroadcast(event, delivered, dropped)
	logrus.WithFields(logrus.Fields{
		"event":        event,
		"message_size": len(message),
		"delivered":    delivered,
		"dropped":      dropped,
	}).Debug("Broadcast event to clients")
}

func (h *Hub) disconnectAll() {
	h.clientsMu.Lock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	h.clientsMu.Unlock()
	metrics.RealtimeClients.Set(0)
}
