package app

import (
	"sync"
	"time"

	"chat_message_service/internal/chat/domain"
	"chat_message_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Broadcaster definition publish message to a named destination
type Broadcaster interface {
	Publish(destination string, msg *domain.Message)
}

const subscriberBuffer = 16

// Hub 管理目的地與線上訂閱者
// 對 broker 而言廣播是 best-effort：逾時的訂閱者丟棄該則訊息，不影響其他訂閱者
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[uuid.UUID]chan *domain.Message
	sendTimeout time.Duration
}

// NewHub create a Hub
func NewHub(sendTimeout time.Duration) *Hub {
	return &Hub{
		subscribers: make(map[string]map[uuid.UUID]chan *domain.Message),
		sendTimeout: sendTimeout,
	}
}

// Subscribe 在指定目的地註冊訂閱者，回傳訂閱 ID 與接收 channel
// channel 不關閉，訂閱端以 context 結束讀取
func (h *Hub) Subscribe(destination string) (uuid.UUID, <-chan *domain.Message) {
	id := uuid.New()
	ch := make(chan *domain.Message, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[destination] == nil {
		h.subscribers[destination] = make(map[uuid.UUID]chan *domain.Message)
	}
	h.subscribers[destination][id] = ch

	return id, ch
}

// Unsubscribe 移除訂閱者
func (h *Hub) Unsubscribe(destination string, id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers[destination], id)
	if len(h.subscribers[destination]) == 0 {
		delete(h.subscribers, destination)
	}
}

// SubscriberCount 目的地目前的訂閱者數量
func (h *Hub) SubscriberCount(destination string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[destination])
}

// Publish 廣播到目的地的所有訂閱者，零個訂閱者不是錯誤
// 不在持鎖狀態下送訊息，慢的訂閱者只會丟掉自己的那一份
func (h *Hub) Publish(destination string, msg *domain.Message) {
	h.mu.RLock()
	targets := make([]chan *domain.Message, 0, len(h.subscribers[destination]))
	for _, ch := range h.subscribers[destination] {
		targets = append(targets, ch)
	}
	h.mu.RUnlock()

	for _, ch := range targets {
		select {
		case ch <- msg:
		case <-time.After(h.sendTimeout):
			logger.Log.Warn(
				"subscriber too slow, message dropped",
				zap.String("destination", destination),
				zap.Uint("message_id", msg.ID),
			)
		}
	}
}
