package web

import (
	"embed"
	"encoding/binary"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/thelolagemann/gochip8/pkg/bits"
	"github.com/thelolagemann/gochip8/pkg/log"
)

//go:embed static
var static embed.FS

// outbound is a message queued for delivery by the hub. It goes to
// every client except except, or only to to when set.
type outbound struct {
	data   []byte
	except *Client
	to     *Client
}

type hub struct {
	clients map[*Client]bool
	player  *Player

	broadcast            chan outbound
	register, unregister chan *Client
	done                 chan struct{}
	stopOnce             sync.Once

	settings  settings
	currentID uint8
	log       log.Logger

	mu sync.Mutex
}

func newHub(s settings, logger log.Logger) *hub {
	return &hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		settings:   s,
		log:        logger,
	}
}

// handler serves the web client at / and client connections at /ws.
func (h *hub) handler() http.Handler {
	page, _ := fs.Sub(static, "static")

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(page)))
	mux.HandleFunc("/ws", func(wr http.ResponseWriter, r *http.Request) {
		wr.Header().Set("Access-Control-Allow-Origin", "*")

		// upgrade the connection to a websocket connection
		conn, err := upgrader.Upgrade(wr, r, nil)
		if err != nil {
			h.log.Errorf("unable to upgrade connection from %s: %v", r.RemoteAddr, err)
			return
		}

		// create new client
		c := h.newClient(conn, r)

		// spawn read/write pumps
		go c.ReadPump()
		go c.WritePump()
	})
	return mux
}

// run delivers messages to clients until stop is called.
func (h *hub) run() {
	// periodic info updates
	t := time.NewTicker(time.Second)
	defer t.Stop()

	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.connect(c)
		case c := <-h.unregister:
			// is this client still registered
			if _, ok := h.clients[c]; !ok {
				continue
			}
			delete(h.clients, c)
			close(c.Send)

			// notify connected clients that this client has disconnected
			for other := range h.clients {
				select {
				case other.Send <- []byte{ClientClosing, c.ID}:
				default:
				}
			}
		case m := <-h.broadcast:
			for c := range h.clients {
				if c == m.except || (m.to != nil && c != m.to) {
					continue
				}
				select {
				case c.Send <- m.data:
				default:
					// client is too far behind
					close(c.Send)
					delete(h.clients, c)
				}
			}
		case <-t.C:
			// build information
			data := []byte{ServerInfo}
			for c := range h.clients {
				latencyBuf := make([]byte, 2)
				binary.LittleEndian.PutUint16(latencyBuf, c.latency())
				data = append(data, c.ID)
				data = append(data, latencyBuf...)
			}
			for c := range h.clients {
				select {
				case c.Send <- data:
				default:
				}
			}
		case <-h.done:
			for c := range h.clients {
				close(c.Send)
				delete(h.clients, c)
			}
			return
		}
	}
}

// connect sends the hub settings, the current frame and the other
// connected clients to a newly registered client.
func (h *hub) connect(c *Client) {
	s := h.currentSettings()
	c.Send <- []byte{ClientInfo, ClientStatus, h.info(), uint8(s.compressionLevel), uint8(s.framePatchRatio)}

	msgs, err := h.player.sync(s)
	if err != nil {
		h.log.Errorf("unable to sync client %d: %v", c.ID, err)
	}
	for _, m := range msgs {
		c.Send <- m
	}

	// synchronize clients to connecting client
	var data []byte
	for cl := range h.clients {
		if c == cl {
			continue // skip self
		}

		data = append(data, cl.identity()...)
		data = append(data, byte('\n'))
	}

	if len(data) > 0 {
		// remove last newline to avoid issues with JS
		data = data[:len(data)-1]
	}

	c.Send <- append([]byte{ClientListSync}, data...)
}

// send queues m for delivery. It is dropped once the hub has stopped.
func (h *hub) send(m outbound) {
	select {
	case h.broadcast <- m:
	case <-h.done:
	}
}

// stop disconnects every client and stops run.
func (h *hub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *hub) currentSettings() settings {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.settings
}

// apply changes the setting e to value.
func (h *hub) apply(e Event, value uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch e {
	case Compression:
		h.settings.compression = value == 1
	case CompressionLevel:
		if value > 11 {
			value = 11
		}
		h.settings.compressionLevel = int(value)
	case FramePatching:
		h.settings.framePatching = value == 1
	case FramePatchingRatio:
		if value > 100 {
			value = 100
		}
		h.settings.framePatchRatio = int(value)
	case FrameSkipping:
		h.settings.frameSkipping = value == 1
	}
}

// info returns a byte of information containing the various
// hub settings. The byte is constructed as follows:
//
//	Bit 0: Emulator running
//	Bit 2: Compression enabled
//	Bit 3: Frame patching enabled
//	Bit 4: Frame skipping enabled
//	Bit 5: Emulator paused
func (h *hub) info() byte {
	info := uint8(0)
	if h.player != nil && h.player.emu != nil {
		status := h.player.emu.Status()
		if status.IsRunning() {
			info = bits.Set(info, 0)
		}
		if status.IsPaused() {
			info = bits.Set(info, 5)
		}
	}

	s := h.currentSettings()
	if s.compression {
		info = bits.Set(info, 2)
	}
	if s.framePatching {
		info = bits.Set(info, 3)
	}
	if s.frameSkipping {
		info = bits.Set(info, 4)
	}

	return info
}

// newClient creates a new client and registers it to the hub
func (h *hub) newClient(conn *websocket.Conn, r *http.Request) *Client {
	h.mu.Lock()
	h.currentID++
	id := h.currentID
	h.mu.Unlock()

	c := &Client{
		hub:  h,
		conn: conn,
		Send: make(chan []byte, 256),
		ID:   id,
		Metadata: struct {
			RemoteAddr string
			UserAgent  string
			Username   string
		}{RemoteAddr: r.RemoteAddr, UserAgent: r.Header.Get("User-Agent")},
		connectedAt: time.Now(),
	}
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Send)
	}
	return c
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 16,
	WriteBufferSize: 1024 * 16,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}
