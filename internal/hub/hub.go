package hub

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"storyhub/internal/service"
)

// Frame is the wire format exchanged with connected clients. Outbound frames
// are either "message" or "error"; errors only ever go to the connection
// that caused them.
type Frame struct {
	Type      string  `json:"type"`
	ID        string  `json:"id,omitempty"`
	Room      string  `json:"room,omitempty"`
	SenderID  *string `json:"sender_id,omitempty"`
	Content   string  `json:"content,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// Session is one connected client's handle. Outbound frames are delivered
// over a buffered channel; a session that stops draining it is dropped
// rather than blocking the hub loop.
type Session struct {
	userID *string
	out    chan Frame
}

// Frames returns the session's outbound channel. It is closed when the
// session is dropped or disconnects.
func (s *Session) Frames() <-chan Frame {
	return s.out
}

// UserID returns the identity bound at connect time, nil for anonymous.
func (s *Session) UserID() *string {
	return s.userID
}

const sessionBuffer = 32

type joinCmd struct {
	sess *Session
	room string
}

type publishCmd struct {
	sess    *Session
	room    string
	content string
}

// Hub owns room membership and fans published messages out to current room
// members. A single goroutine (Run) owns all mutable state; connections talk
// to it through command channels, so no locking is needed.
//
// Membership is process-local and in-memory only: a restart drops all rooms
// and clients must rejoin.
type Hub struct {
	messages service.MessageService
	log      *logrus.Logger

	register   chan *Session
	unregister chan *Session
	join       chan joinCmd
	publish    chan publishCmd
	done       chan struct{}

	rooms    map[string]map[*Session]struct{}
	sessions map[*Session]map[string]struct{}
}

func New(messages service.MessageService, log *logrus.Logger) *Hub {
	return &Hub{
		messages:   messages,
		log:        log,
		register:   make(chan *Session),
		unregister: make(chan *Session),
		join:       make(chan joinCmd),
		publish:    make(chan publishCmd),
		done:       make(chan struct{}),
		rooms:      make(map[string]map[*Session]struct{}),
		sessions:   make(map[*Session]map[string]struct{}),
	}
}

// Run processes hub commands until Shutdown. Call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case sess := <-h.register:
			h.sessions[sess] = make(map[string]struct{})

		case sess := <-h.unregister:
			h.drop(sess)

		case cmd := <-h.join:
			h.handleJoin(cmd)

		case cmd := <-h.publish:
			h.handlePublish(cmd)

		case <-h.done:
			for sess := range h.sessions {
				h.drop(sess)
			}
			return
		}
	}
}

// Shutdown stops the run loop and closes every session's outbound channel.
func (h *Hub) Shutdown() {
	close(h.done)
}

// Connect registers a new session, optionally bound to a user identity.
func (h *Hub) Connect(userID *string) *Session {
	sess := &Session{
		userID: userID,
		out:    make(chan Frame, sessionBuffer),
	}
	select {
	case h.register <- sess:
	case <-h.done:
		close(sess.out)
	}
	return sess
}

// Disconnect removes the session from every room it joined. There is no
// persisted side effect.
func (h *Hub) Disconnect(sess *Session) {
	select {
	case h.unregister <- sess:
	case <-h.done:
	}
}

// Join adds the session to a room's member set. Rooms are created implicitly
// on first join; joining twice is a no-op, and joining a second room does
// not leave the first.
func (h *Hub) Join(sess *Session, room string) {
	select {
	case h.join <- joinCmd{sess: sess, room: room}:
	case <-h.done:
	}
}

// Publish persists the message and fans it out to the room's current
// members. Failures are reported only to the originating session.
func (h *Hub) Publish(sess *Session, room, content string) {
	select {
	case h.publish <- publishCmd{sess: sess, room: room, content: content}:
	case <-h.done:
	}
}

func (h *Hub) handleJoin(cmd joinCmd) {
	joined, ok := h.sessions[cmd.sess]
	if !ok || cmd.room == "" {
		return
	}
	if _, member := joined[cmd.room]; member {
		return
	}
	joined[cmd.room] = struct{}{}

	members := h.rooms[cmd.room]
	if members == nil {
		members = make(map[*Session]struct{})
		h.rooms[cmd.room] = members
	}
	members[cmd.sess] = struct{}{}
}

func (h *Hub) handlePublish(cmd publishCmd) {
	joined, ok := h.sessions[cmd.sess]
	if !ok {
		return
	}
	if _, member := joined[cmd.room]; !member {
		h.send(cmd.sess, Frame{Type: "error", Room: cmd.room, Error: "join the room before publishing"})
		return
	}

	// persist first: if the write fails nothing is broadcast, so the stored
	// log and the delivered stream cannot diverge
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	msg, err := h.messages.Append(ctx, cmd.room, cmd.sess.userID, cmd.content)
	cancel()
	if err != nil {
		h.log.WithError(err).WithField("room", cmd.room).Warn("persist message failed")
		h.send(cmd.sess, Frame{Type: "error", Room: cmd.room, Error: "message could not be saved"})
		return
	}

	frame := Frame{
		Type:      "message",
		ID:        msg.ID,
		Room:      msg.Room,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt.Format(time.RFC3339),
	}
	for member := range h.rooms[cmd.room] {
		h.send(member, frame)
	}
}

// send delivers without blocking the loop; a session with a full buffer is
// dropped like a disconnect.
func (h *Hub) send(sess *Session, frame Frame) {
	select {
	case sess.out <- frame:
	default:
		h.log.Warn("session outbound buffer full, dropping connection")
		h.drop(sess)
	}
}

func (h *Hub) drop(sess *Session) {
	joined, ok := h.sessions[sess]
	if !ok {
		return
	}
	for room := range joined {
		members := h.rooms[room]
		delete(members, sess)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.sessions, sess)
	close(sess.out)
}
