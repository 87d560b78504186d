package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newslive/internal/domain"
	"newslive/internal/metrics"
)

func newTestClient(h *Hub, buffer int) *Client {
	return &Client{id: "test-client", hub: h, send: make(chan []byte, buffer)}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.ClientCount() == n }, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, c *Client) domain.RealtimeEvent {
	t.Helper()
	select {
	case raw := <-c.send:
		var event domain.RealtimeEvent
		require.NoError(t, json.Unmarshal(raw, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("expected an event")
		return domain.RealtimeEvent{}
	}
}

func TestHub_BroadcastReachesOnlyRegisteredClients(t *testing.T) {
	h := startHub(t)
	early := newTestClient(h, 4)
	require.True(t, h.Register(early))
	waitForClients(t, h, 1)

	require.NoError(t, h.Broadcast(domain.EventNewArticle, map[string]string{"id": "a-1"}))
	event := receive(t, early)
	assert.Equal(t, domain.EventNewArticle, event.Event)
	assert.Equal(t, map[string]interface{}{"id": "a-1"}, event.Data)

	// 晚连接的客户端收不到之前的事件
	late := newTestClient(h, 4)
	require.True(t, h.Register(late))
	waitForClients(t, h, 2)
	select {
	case <-late.send:
		t.Fatal("late client must not receive earlier events")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, h.Broadcast(domain.EventNewArticle, map[string]string{"id": "a-2"}))
	assert.Equal(t, map[string]interface{}{"id": "a-2"}, receive(t, early).Data)
	assert.Equal(t, map[string]interface{}{"id": "a-2"}, receive(t, late).Data)
}

func TestHub_SlowClientMissesEvents(t *testing.T) {
	// 直接调用 broadcast，两条事件在客户端读取之前都已处理完
	h := NewHub()
	slow := newTestClient(h, 1)
	h.registerClient(slow)
	droppedBefore := testutil.ToFloat64(metrics.RealtimeEventsTotal.WithLabelValues(domain.EventNewArticle, "dropped"))

	first, err := json.Marshal(domain.RealtimeEvent{Event: domain.EventNewArticle, Data: "first"})
	require.NoError(t, err)
	second, err := json.Marshal(domain.RealtimeEvent{Event: domain.EventNewArticle, Data: "second"})
	require.NoError(t, err)
	h.broadcast(domain.EventNewArticle, first)
	h.broadcast(domain.EventNewArticle, second)

	assert.Equal(t, "first", receive(t, slow).Data)
	select {
	case <-slow.send:
		t.Fatal("second event should have been dropped")
	default:
	}
	assert.Equal(t, droppedBefore+1, testutil.ToFloat64(metrics.RealtimeEventsTotal.WithLabelValues(domain.EventNewArticle, "dropped")))
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	h := startHub(t)
	c := newTestClient(h, 1)
	require.True(t, h.Register(c))
	waitForClients(t, h, 1)

	require.True(t, h.QueueMessage(HubMessage{Type: "unregister", Client: c}))
	waitForClients(t, h, 0)
	_, open := <-c.send
	assert.False(t, open)

	// 重复注销不会再次关闭通道
	require.True(t, h.QueueMessage(HubMessage{Type: "unregister", Client: c}))
	require.NoError(t, h.Broadcast(domain.EventNewArticle, "after"))
}

func TestHub_StopDisconnectsClients(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()

	c := newTestClient(h, 1)
	require.True(t, h.Register(c))
	waitForClients(t, h, 1)

	h.Stop()
	h.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.Equal(t, 0, h.ClientCount())
	_, open := <-c.send
	assert.False(t, open)
	assert.False(t, h.Register(newTestClient(h, 1)), "停止后不再接受注册")
	assert.Error(t, h.Broadcast(domain.EventNewArticle, "x"))
}
