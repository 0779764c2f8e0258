// Package main provides a terminal chat client for the travel assistant's
// session websocket.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message types
const (
	TypeTurn  = "turn"
	TypeReply = "reply"
	TypeError = "error"
)

// TurnMessage is sent for every line the user types.
type TurnMessage struct {
	Type    string `json:"type"`
	UserID  string `json:"user_id,omitempty"`
	Content string `json:"content"`
}

// ServerMessage is a reply or an error from the server.
type ServerMessage struct {
	Type  string `json:"type"`
	Ts    int64  `json:"ts"`
	Error string `json:"error,omitempty"`
	Turn  *struct {
		Intent            string   `json:"intent"`
		ActiveItineraryID string   `json:"active_itinerary_id,omitempty"`
		AwaitingConfirm   bool     `json:"awaiting_confirmation"`
		Changes           []string `json:"changes,omitempty"`
		Reply             struct {
			Content string `json:"content"`
		} `json:"reply"`
	} `json:"turn,omitempty"`
}

// Client represents a WebSocket client bound to one session.
type Client struct {
	conn   *websocket.Conn
	userID string
	done   chan struct{}
}

// NewClient connects to the session endpoint under base.
func NewClient(base, sessionID, userID, token string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/v1/sessions/" + url.PathEscape(sessionID) + "/ws")
	if err != nil {
		return nil, fmt.Errorf("parse address: %w", err)
	}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return &Client{
		conn:   conn,
		userID: userID,
		done:   make(chan struct{}),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// SendTurn sends one user message.
func (c *Client) SendTurn(content string) error {
	return c.conn.WriteJSON(TurnMessage{
		Type:    TypeTurn,
		UserID:  c.userID,
		Content: content,
	})
}

// ReadMessages reads and prints messages from the server.
func (c *Client) ReadMessages() {
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("Read error: %v", err)
				}
				return
			}

			var msg ServerMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("Unmarshal error: %v", err)
				continue
			}
			printMessage(msg)
		}
	}
}

func printMessage(msg ServerMessage) {
	switch {
	case msg.Type == TypeError:
		fmt.Printf("\n[error] %s\n> ", msg.Error)
	case msg.Turn != nil:
		fmt.Printf("\n[%s] %s\n", msg.Turn.Intent, msg.Turn.Reply.Content)
		if msg.Turn.AwaitingConfirm {
			fmt.Println("(trả lời \"có\" để lưu, \"không\" để huỷ)")
		}
		fmt.Print("> ")
	default:
		fmt.Printf("\n[%s] %s\n> ", msg.Type, time.UnixMilli(msg.Ts).Format(time.TimeOnly))
	}
}

func main() {
	addr := flag.String("addr", "ws://localhost:8080", "Server base address")
	session := flag.String("session", "", "Session ID (random when empty)")
	userID := flag.String("user", "", "User ID, required when the server has auth disabled")
	token := flag.String("token", "", "Bearer token")
	flag.Parse()

	log.SetFlags(log.Ltime)

	if *session == "" {
		*session = uuid.NewString()
	}
	fmt.Printf("Connecting to %s (session %s)...\n", *addr, *session)

	client, err := NewClient(*addr, *session, *userID, *token)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	fmt.Println("Connected. Type a message and press Enter to send.")
	fmt.Println("Commands: /quit to exit")

	// Start reading messages in background
	go client.ReadMessages()

	// Handle Ctrl+C
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	// Read user input
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		select {
		case <-interrupt:
			fmt.Println("\nInterrupted")
			return
		default:
			if !scanner.Scan() {
				return
			}

			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}

			if input == "/quit" {
				fmt.Println("Bye!")
				return
			}

			if err := client.SendTurn(input); err != nil {
				log.Printf("Send error: %v", err)
			}
		}
	}
}
