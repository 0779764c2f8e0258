package v1

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/phuy1125/vin2/internal/domain"
)

const (
	socketMaxMessageSize = 64 * 1024
	socketReadTimeout    = 90 * time.Second
	socketWriteTimeout   = 10 * time.Second
	socketPingInterval   = 30 * time.Second
)

// Socket message types.
const (
	TypeTurn  = "turn"
	TypeReply = "reply"
	TypeError = "error"
)

// socketIn is a turn sent by the client.
type socketIn struct {
	Type    string        `json:"type"`
	UserID  string        `json:"user_id,omitempty"`
	Content string        `json:"content"`
	Parts   []domain.Part `json:"parts,omitempty"`
}

// socketOut is sent back for every incoming message.
type socketOut struct {
	Type  string               `json:"type"`
	Ts    int64                `json:"ts"`
	Turn  *domain.TurnResponse `json:"turn,omitempty"`
	Error string               `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TurnSocket serves a session over a websocket. Turns are processed in the
// order they arrive on the connection.
func (h *Handler) TurnSocket(c echo.Context) error {
	sessionID := c.Param("session_id")
	subject, err := userFor(c, "")
	if err != nil {
		return h.writeError(c, err)
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("failed to upgrade websocket", "session_id", sessionID, "error", err)
		return nil
	}
	defer ws.Close()

	ws.SetReadLimit(socketMaxMessageSize)
	ws.SetReadDeadline(time.Now().Add(socketReadTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(socketReadTimeout))
	})

	var writeMu sync.Mutex
	write := func(out socketOut) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		out.Ts = time.Now().UnixMilli()
		ws.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
		return ws.WriteJSON(out)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(socketPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				writeMu.Lock()
				err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(socketWriteTimeout))
				writeMu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}()

	ctx := c.Request().Context()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket closed", "session_id", sessionID, "error", err)
			}
			return nil
		}
		ws.SetReadDeadline(time.Now().Add(socketReadTimeout))

		var in socketIn
		if err := json.Unmarshal(data, &in); err != nil || in.Type != TypeTurn {
			if err := write(socketOut{Type: TypeError, Error: "expected a turn message"}); err != nil {
				return nil
			}
			continue
		}

		userID := in.UserID
		if subject != "" {
			if userID != "" && userID != subject {
				if err := write(socketOut{Type: TypeError, Error: domain.ErrForbidden.Error()}); err != nil {
					return nil
				}
				continue
			}
			userID = subject
		}

		resp, err := h.service.HandleTurn(ctx, sessionID, domain.TurnRequest{UserID: userID, Content: in.Content, Parts: in.Parts})
		out := socketOut{Type: TypeReply, Turn: resp}
		if err != nil {
			out = socketOut{Type: TypeError, Error: err.Error()}
		}
		if err := write(out); err != nil {
			return nil
		}
	}
}
