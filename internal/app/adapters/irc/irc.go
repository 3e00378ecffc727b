package irc

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"strings"
	"sync"
	"time"

	"chatsync/internal/app/domain/chat"
	"chatsync/internal/app/ports"
	"chatsync/pkg/logger"
)

const serverAddr = "irc.chat.twitch.tv:443"

// Connection is a single IRC connection emitting ChatEvents. The core
// runs one for reading channel traffic and one for writing.
type Connection struct {
	log    logger.Logger
	events chan ports.ChatEvent

	mu        sync.Mutex
	conn      net.Conn
	channels  map[string]bool
	username  string
	token     string
	connected bool
	closing   bool
}

func New(log logger.Logger) *Connection {
	return &Connection{
		log:      log,
		events:   make(chan ports.ChatEvent, 1024),
		channels: make(map[string]bool),
	}
}

func (c *Connection) Events() <-chan ports.ChatEvent {
	return c.events
}

// Connect stores the credentials and starts the connection loop. An
// empty username logs in anonymously.
func (c *Connection) Connect(username, token string) {
	c.mu.Lock()
	c.username = username
	c.token = token
	c.closing = false
	c.mu.Unlock()

	go c.run()
}

func (c *Connection) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Connection) JoinChannel(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channels[channel] {
		return
	}
	c.channels[channel] = true
	if c.conn != nil {
		c.writeLocked("JOIN #" + channel)
	}
}

func (c *Connection) JoinChannels(channels []string) {
	for _, channel := range channels {
		c.JoinChannel(channel)
	}
}

func (c *Connection) PartChannel(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.channels[channel] {
		return
	}
	delete(c.channels, channel)
	if c.conn != nil {
		c.writeLocked("PART #" + channel)
	}
}

func (c *Connection) SendMessage(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLocked(raw)
}

func (c *Connection) Reconnect() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Connection) ReconnectIfNecessary() {
	if !c.Connected() {
		c.Reconnect()
	}
}

func (c *Connection) Close() {
	c.mu.Lock()
	c.closing = true
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Connection) run() {
	for {
		err := c.connectAndListen()

		c.mu.Lock()
		c.connected = false
		c.conn = nil
		closing := c.closing
		c.mu.Unlock()

		if closing {
			c.events <- ports.ChatEvent{Kind: ports.ChatEventClosed}
			return
		}

		c.events <- ports.ChatEvent{Kind: ports.ChatEventError, Err: err}
		c.log.Warn("IRC connection lost, retrying...", slog.Any("error", err))
		time.Sleep(5 * time.Second)
	}
}

func (c *Connection) connectAndListen() error {
	conn, err := tls.Dial("tcp", serverAddr, &tls.Config{MinVersion: tls.VersionTLS12})
	if err != nil {
		return fmt.Errorf("dial irc: %w", err)
	}

	c.mu.Lock()
	c.conn = conn

	nick, anonymous := c.username, false
	if nick == "" {
		nick = fmt.Sprintf("justinfan%d", 10000+rand.Intn(80000))
		anonymous = true
	}
	if !anonymous {
		c.writeLocked("PASS oauth:" + c.token)
	}
	c.writeLocked("NICK " + nick)
	c.writeLocked("CAP REQ :twitch.tv/tags twitch.tv/commands")

	for channel := range c.channels {
		c.writeLocked("JOIN #" + channel)
	}
	c.mu.Unlock()

	return c.listen(conn, nick, anonymous)
}

func (c *Connection) listen(conn net.Conn, nick string, anonymous bool) error {
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read irc line: %w", err)
		}
		line = strings.TrimSpace(line)

		// keep-alive
		if strings.HasPrefix(line, "PING") {
			c.SendMessage("PONG :tmi.twitch.tv")
			continue
		}

		msg := chat.ParseIRC(line)
		if msg == nil {
			continue
		}

		switch msg.Command {
		case "001":
			c.mu.Lock()
			c.connected = true
			c.mu.Unlock()
		case "JOIN":
			if msg.Nick() == nick {
				c.events <- ports.ChatEvent{
					Kind:        ports.ChatEventConnected,
					Channel:     msg.ChannelParam(),
					IsAnonymous: anonymous,
				}
			}
		case "NOTICE":
			switch {
			case strings.Contains(msg.Param(1), "Login authentication failed"),
				strings.Contains(msg.Param(1), "Improperly formatted auth"):
				c.events <- ports.ChatEvent{Kind: ports.ChatEventLoginFailed}
			case msg.Tag("msg-id") == "msg_channel_suspended":
				c.events <- ports.ChatEvent{
					Kind:    ports.ChatEventChannelNonExistent,
					Channel: msg.ChannelParam(),
				}
			default:
				c.events <- ports.ChatEvent{Kind: ports.ChatEventMessage, Message: msg}
			}
		case "RECONNECT":
			return fmt.Errorf("server requested reconnect")
		default:
			c.events <- ports.ChatEvent{Kind: ports.ChatEventMessage, Message: msg}
		}
	}
}

func (c *Connection) writeLocked(msg string) {
	if c.conn != nil {
		_, _ = c.conn.Write([]byte(msg + "\r\n"))
	}
}
