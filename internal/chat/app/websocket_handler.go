package app

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"chat_message_service/internal/chat/domain"
	"chat_message_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ChatWebsocketHandler 處理 WebSocket 連線：即時送訊息與訂閱廣播目的地
type ChatWebsocketHandler struct {
	messageUC *MessageUseCase
	hub       *Hub
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(messageUC *MessageUseCase, hub *Hub) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		messageUC: messageUC,
		hub:       hub,
	}
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(ctx)

	// conn 會被讀取迴圈與多個 pump goroutine 同時寫入，寫入需互斥
	var writeMu sync.Mutex

	// 此連線持有的訂閱，destination -> 訂閱 ID
	subs := make(map[string]uuid.UUID)

	defer func() {
		ticker.Stop()
		for dest, id := range subs {
			h.hub.Unsubscribe(dest, id)
		}
		logger.Log.Info("websocket close")
		conn.Close()
		cancel()
	}()

	//client發出close
	//fiber會自動處理(在read msg 回傳err),故需要SetCloseHandler另外接出
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	//server發出ping之後client連線正常會回pong
	conn.SetPongHandler(func(appData string) error {
		logger.Log.Debug("Received PONG")
		return nil
	})

	//client發出ping
	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	// 定期發送 Ping
	go func() {
		for {
			select {
			case <-ticker.C:
				writeMu.Lock()
				err := conn.WriteMessage(websocket.PingMessage, []byte("ping"))
				writeMu.Unlock()
				if err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		// 1. 讀取前端訊息
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}

		var req domain.WSRequest
		if err := json.Unmarshal(message, &req); err != nil {
			h.sendResponse(conn, &writeMu, domain.WSResponse{
				Action:  req.Action,
				Success: false,
				Error:   "invalid request",
			})
			continue
		}

		// 2. 依 action 分派
		switch domain.Action(req.Action) {
		case domain.SendMessage:
			h.handleSendMessage(ctxClose, conn, &writeMu, req)
		case domain.SubscribeDestination:
			h.handleSubscribe(ctxClose, conn, &writeMu, subs, req)
		case domain.UnsubscribeDestination:
			h.handleUnsubscribe(conn, &writeMu, subs, req)
		default:
			h.sendResponse(conn, &writeMu, domain.WSResponse{
				Action:  req.Action,
				Success: false,
				Error:   "unknown action",
			})
		}
	}
}

// handleSendMessage 走與 REST 建立訊息相同的路徑：持久化後發布到 broker
func (h *ChatWebsocketHandler) handleSendMessage(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex, req domain.WSRequest) {
	msg, err := h.messageUC.CreateMessage(ctx, domain.CreateMessageRequest{
		Username: req.Username,
		Content:  req.Content,
		RoomName: req.RoomName,
	})
	if err != nil {
		h.sendResponse(conn, writeMu, domain.WSResponse{
			Action:  req.Action,
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	h.sendResponse(conn, writeMu, domain.WSResponse{
		Action:  req.Action,
		Success: true,
		Payload: map[string]interface{}{"message": msg},
	})
}

func (h *ChatWebsocketHandler) handleSubscribe(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex, subs map[string]uuid.UUID, req domain.WSRequest) {
	dest := strings.TrimSpace(req.Destination)
	if dest == "" {
		h.sendResponse(conn, writeMu, domain.WSResponse{
			Action:  req.Action,
			Success: false,
			Error:   "destination is required",
		})
		return
	}

	if _, ok := subs[dest]; ok {
		h.sendResponse(conn, writeMu, domain.WSResponse{
			Action:  req.Action,
			Success: true,
			Payload: map[string]interface{}{"destination": dest},
		})
		return
	}

	id, ch := h.hub.Subscribe(dest)
	subs[dest] = id
	go h.pump(ctx, conn, writeMu, dest, ch)

	h.sendResponse(conn, writeMu, domain.WSResponse{
		Action:  req.Action,
		Success: true,
		Payload: map[string]interface{}{"destination": dest},
	})
}

func (h *ChatWebsocketHandler) handleUnsubscribe(conn *websocket.Conn, writeMu *sync.Mutex, subs map[string]uuid.UUID, req domain.WSRequest) {
	dest := strings.TrimSpace(req.Destination)
	id, ok := subs[dest]
	if ok {
		h.hub.Unsubscribe(dest, id)
		delete(subs, dest)
	}

	h.sendResponse(conn, writeMu, domain.WSResponse{
		Action:  req.Action,
		Success: ok,
		Payload: map[string]interface{}{"destination": dest},
	})
}

// pump 把 hub 廣播的訊息推到 socket，直到連線結束
func (h *ChatWebsocketHandler) pump(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex, dest string, ch <-chan *domain.Message) {
	for {
		select {
		case msg := <-ch:
			h.sendResponse(conn, writeMu, domain.WSResponse{
				Action:  string(domain.NotifyMessage),
				Success: true,
				Payload: map[string]interface{}{
					"destination": dest,
					"message":     msg,
				},
			})
		case <-ctx.Done():
			return
		}
	}
}

func (h *ChatWebsocketHandler) sendResponse(conn *websocket.Conn, writeMu *sync.Mutex, resp domain.WSResponse) {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := conn.WriteJSON(resp); err != nil {
		logger.Log.Errorf("websocket write error:", err)
	}
}
