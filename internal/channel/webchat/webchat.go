package webchat

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/logging"
)

// WebChatAdapter serves a websocket chat endpoint. Each connection picks
// its own conversation key via the user_id query parameter so a browser
// reload resumes the same conversation.
type WebChatAdapter struct {
	port     int
	incoming chan *channel.Message
	upgrader websocket.Upgrader
	conns    map[string]*websocket.Conn
	connMux  sync.RWMutex
	stopCh   chan struct{}
	logger   *slog.Logger
}

// WSMessage is the wire shape in both directions. Location shares set
// type "location" with lat/lon; replies set type "message" and a kind
// the frontend can render ("text", "location_request", ...).
type WSMessage struct {
	Type    string  `json:"type"`
	Content string  `json:"content"`
	Kind    string  `json:"kind,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
	UserID  string  `json:"user_id,omitempty"`
}

func NewWebChatAdapter(port int) *WebChatAdapter {
	return &WebChatAdapter{
		port:     port,
		incoming: make(chan *channel.Message, 100),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns:  make(map[string]*websocket.Conn),
		stopCh: make(chan struct{}),
		logger: logging.WithComponent("channel.webchat"),
	}
}

func (w *WebChatAdapter) Name() string {
	return "webchat"
}

func (w *WebChatAdapter) IsEnabled() bool {
	return w.port > 0
}

func (w *WebChatAdapter) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", w.wsHandler)
	server := &http.Server{Addr: ":" + strconv.Itoa(w.port), Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			w.logger.Error("webchat server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
		close(w.stopCh)
	}()

	w.logger.Info("webchat listening", "port", w.port)
	return nil
}

func (w *WebChatAdapter) Stop() error {
	close(w.incoming)
	return nil
}

func (w *WebChatAdapter) SendMessage(conversationKey string, resp *channel.Response) error {
	w.connMux.RLock()
	conn, exists := w.conns[conversationKey]
	w.connMux.RUnlock()
	if !exists {
		// The browser went away; the reply has nowhere to go.
		return nil
	}

	return conn.WriteJSON(WSMessage{
		Type:    "message",
		Content: resp.Content,
		Kind:    string(resp.Kind),
	})
}

func (w *WebChatAdapter) Incoming() <-chan *channel.Message {
	return w.incoming
}

func (w *WebChatAdapter) wsHandler(rw http.ResponseWriter, r *http.Request) {
	conn, err := w.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		w.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "anonymous_" + strconv.FormatInt(time.Now().UnixNano(), 10)
	}

	w.connMux.Lock()
	w.conns[userID] = conn
	w.connMux.Unlock()

	defer func() {
		w.connMux.Lock()
		delete(w.conns, userID)
		w.connMux.Unlock()
		conn.Close()
	}()

	for {
		select {
		case <-w.stopCh:
			return
		default:
			var msg WSMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if translated := translate(userID, msg); translated != nil {
				w.incoming <- translated
			}
		}
	}
}

// translate maps one websocket frame onto the channel message shape.
// Unknown frame types are dropped.
func translate(userID string, msg WSMessage) *channel.Message {
	base := &channel.Message{
		ID:              strconv.FormatInt(time.Now().UnixNano(), 10),
		Channel:         "webchat",
		ConversationKey: userID,
		Metadata:        map[string]string{"connection_id": userID},
		Timestamp:       time.Now().Unix(),
	}
	switch msg.Type {
	case "message":
		base.Kind = channel.KindText
		base.Text = msg.Content
		return base
	case "location":
		base.Kind = channel.KindLocation
		base.Location = &channel.Location{Lat: msg.Lat, Lon: msg.Lon}
		return base
	}
	return nil
}
