// Package client implements a headless Hexlands client: a websocket
// connection to the server and a runner that plays one seat with the bot.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"hexlands/internal/protocol"
)

const (
	dialTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 1 << 20
)

// ErrNotConnected is returned when sending without a connection.
var ErrNotConnected = errors.New("not connected")

// NetworkClient handles WebSocket communication with the server.
type NetworkClient struct {
	conn     *websocket.Conn
	sendChan chan *protocol.Message
	recvChan chan *protocol.Message
	done     chan struct{}
	mu       sync.Mutex
	log      *zap.Logger

	connected bool
}

// NewNetworkClient creates a new network client.
func NewNetworkClient(log *zap.Logger) *NetworkClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &NetworkClient{
		sendChan: make(chan *protocol.Message, 64),
		log:      log,
	}
}

// WebSocketURL turns a server address into the websocket endpoint. Full
// ws:// and wss:// URLs are used as given; a bare host:port gets ws:// and
// the /ws path.
func WebSocketURL(addr string) string {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return addr
	}
	if rest, ok := strings.CutPrefix(addr, "https://"); ok {
		return "wss://" + strings.TrimSuffix(rest, "/") + "/ws"
	}
	addr = strings.TrimPrefix(addr, "http://")
	return "ws://" + strings.TrimSuffix(addr, "/") + "/ws"
}

// Connect dials the server. The pumps run until Disconnect or until the
// server goes away, at which point RecvChan is closed.
func (c *NetworkClient) Connect(ctx context.Context, addr string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	url := WebSocketURL(addr)
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, url, nil)
	if err != nil {
		return err
	}
	conn.SetReadLimit(readLimit)
	c.log.Info("connected", zap.String("url", url))

	c.conn = conn
	c.connected = true
	c.done = make(chan struct{})
	c.recvChan = make(chan *protocol.Message, 64)

	go c.readPump(conn, c.done, c.recvChan)
	go c.writePump(conn, c.done)
	return nil
}

// Disconnect closes the connection.
func (c *NetworkClient) Disconnect() {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	c.connected = false
	close(c.done)
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	// The close handshake needs the read pump, which takes mu on exit.
	if conn != nil {
		conn.Close(websocket.StatusNormalClosure, "")
	}
}

// IsConnected returns true if connected to server.
func (c *NetworkClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Send queues a message to be sent to the server.
func (c *NetworkClient) Send(msg *protocol.Message) error {
	c.mu.Lock()
	connected := c.connected
	c.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}

	select {
	case c.sendChan <- msg:
		return nil
	default:
		c.log.Warn("send queue full, dropping message", zap.String("type", string(msg.Type)))
		return errors.New("send queue full")
	}
}

// SendPayload creates and sends a message with the given type and payload.
// It returns the message id, which replies echo.
func (c *NetworkClient) SendPayload(msgType protocol.MessageType, payload interface{}) (string, error) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return "", err
	}
	return msg.ID, c.Send(msg)
}

// RecvChan returns the channel for received messages.
func (c *NetworkClient) RecvChan() <-chan *protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recvChan
}

func (c *NetworkClient) readPump(conn *websocket.Conn, done chan struct{}, recv chan *protocol.Message) {
	defer func() {
		close(recv)
		c.mu.Lock()
		dropped := c.conn == conn
		if dropped {
			// The server went away; stop the write pump too.
			c.connected = false
			close(done)
			c.conn = nil
		}
		c.mu.Unlock()
		if dropped {
			conn.CloseNow()
		}
	}()

	for {
		msgType, data, err := conn.Read(context.Background())
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				select {
				case <-done:
				default:
					c.log.Warn("websocket read failed", zap.Error(err))
				}
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Debug("failed to unmarshal message", zap.Error(err))
			continue
		}

		select {
		case recv <- &msg:
		case <-done:
			return
		}
	}
}

func (c *NetworkClient) writePump(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case msg := <-c.sendChan:
			data, err := json.Marshal(msg)
			if err != nil {
				c.log.Error("failed to marshal message", zap.Error(err))
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err = conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.log.Warn("websocket write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
