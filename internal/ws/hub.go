package ws

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-market/internal/goroutine"
	"github.com/ignatzorin/freelance-market/internal/logger"
)

// Hub управляет активными websocket-подключениями и рассылкой событий.
// Хаб не хранит уведомления, только доставляет их подключенным клиентам.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run обрабатывает регистрацию и отключение клиентов. Запускается в отдельной горутине.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]struct{})
			}
			h.clients[client.userID][client] = struct{}{}
			h.mu.Unlock()
			logger.Log.WithFields(map[string]interface{}{
				"user_id": client.userID,
			}).Debug("ws: клиент подключен")

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.userID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					close(client.send)
					if len(set) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}
			h.mu.Unlock()
			logger.Log.WithFields(map[string]interface{}{
				"user_id": client.userID,
			}).Debug("ws: клиент отключен")
		}
	}
}

// BroadcastToUser отправляет событие всем активным подключениям пользователя.
// Возвращает ошибку, если у пользователя нет активных подключений.
func (h *Hub) BroadcastToUser(userID uuid.UUID, event string, data interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"type": event,
		"data": data,
	})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать событие %q: %w", event, err)
	}

	h.mu.RLock()
	set, ok := h.clients[userID]
	if !ok || len(set) == 0 {
		h.mu.RUnlock()
		return fmt.Errorf("ws: пользователь %s не подключен", userID)
	}

	var slow []*Client
	for client := range set {
		select {
		case client.send <- payload:
		default:
			// Клиент не успевает читать - отключаем его вне блокировки.
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		c := client
		goroutine.SafeGo(func() {
			h.unregister <- c
		})
	}
	return nil
}

// ConnectedUsers возвращает число пользователей с активными подключениями.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
