package web

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// maxMessageSize is the largest message accepted from a client.
	maxMessageSize = 512
	writeWait      = 10 * time.Second
)

// Client is a browser connected to the hub.
type Client struct {
	mu       sync.RWMutex
	hub      *hub
	conn     *websocket.Conn
	Send     chan []byte
	ID       uint8
	Metadata struct {
		RemoteAddr string
		UserAgent  string
		Username   string
	}
	avgLatency  uint16
	connectedAt time.Time
}

// ReadPump reads messages from the connection until it is closed.
func (c *Client) ReadPump() {
	// deferred function to handle unregistering client
	// and closing connection
	defer func() {
		c.unregister()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	// read messages from client
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return // connection closed
		}
		if len(message) == 0 {
			continue
		}

		switch message[0] {
		case settingsMessage: // system related messages
			if len(message) < 3 {
				continue
			}
			if message[1] == RegisterUsername {
				c.mu.Lock()
				c.Metadata.Username = string(message[2:])
				c.mu.Unlock()

				c.hub.send(outbound{data: append([]byte{ClientInfo, RegisterUsername}, c.identity()...)})
				continue
			}

			c.hub.apply(message[1], message[2])
			c.hub.send(outbound{data: []byte{ClientInfo, message[1], message[2]}, except: c})
		case KeepAlive:
		case Closing: // websocket client request close
			return
		default:
			if len(message) < 2 && message[0] > 1 {
				continue
			}
			c.hub.player.handle(c, message)
		}
	}
}

// WritePump writes queued messages to the connection until the hub
// closes Send.
func (c *Client) WritePump() {
	defer func() {
		c.unregister()
		c.conn.Close()
	}()

	for message := range c.Send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		// try to write message to client
		if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
			return
		}

		// update average latency
		rtt, err := roundTrip(c.conn.UnderlyingConn())
		if err != nil {
			continue
		}
		c.mu.Lock()
		c.avgLatency = ((c.avgLatency * 9) + rtt) / 10
		c.mu.Unlock()
	}

	// connection hub closed the connection
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) unregister() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
}

func (c *Client) latency() uint16 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.avgLatency
}

// identity describes the client to other clients as
// address, user agent, username and ID separated by NUL.
func (c *Client) identity() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var data []byte
	data = append(data, c.Metadata.RemoteAddr...)
	data = append(data, 0)
	data = append(data, c.Metadata.UserAgent...)
	data = append(data, 0)
	data = append(data, c.Metadata.Username...)
	data = append(data, 0)
	data = append(data, c.ID)
	return data
}
