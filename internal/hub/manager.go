package hub

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"log"
	"net/http"
	"sync"

	"github.com/OmerBirol/lenslight-tr/internal/event"
	"github.com/OmerBirol/lenslight-tr/internal/model"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	shardCount = 64 // tune: 16/64/128 depending on load
)

type roomBucket struct {
	sync.RWMutex
	rooms map[string]map[string]*Client // groupID -> clientID -> client
}

// Hub owns presence and the group broadcast scopes, and routes every
// inbound live event to the chat dispatcher.
type Hub struct {
	presence   *Presence
	shards     [shardCount]*roomBucket
	chat       *ChatHandler
	register   chan *Client
	unregister chan *Client
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewHub(chat *ChatHandler) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		presence:   NewPresence(),
		chat:       chat,
		register:   make(chan *Client, 1024),
		unregister: make(chan *Client, 1024),
		ctx:        ctx,
		cancel:     cancel,
	}

	for i := 0; i < shardCount; i++ {
		h.shards[i] = &roomBucket{
			rooms: make(map[string]map[string]*Client),
		}
	}

	// run manager loop
	go h.run()

	return h
}

// Presence exposes the registry for monitoring.
func (h *Hub) Presence() *Presence {
	return h.presence
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			// nothing to index yet; presence waits for identify
			log.Printf("client %s registered", c.ID)
		case c := <-h.unregister:
			h.removeClient(c)
		}
	}
}

func (h *Hub) handleEvent(ev event.WsEvent, c *Client) {
	h.chat.Handle(ev, c)
}

func getShard(groupID string) uint32 {
	if groupID == "" {
		return 0
	}

	sum := sha1.Sum([]byte(groupID))
	return binary.BigEndian.Uint32(sum[:4]) % shardCount
}

// joinRoom subscribes a client to a group's broadcast scope. Joining grants
// nothing: membership is enforced per message, not per join.
func (h *Hub) joinRoom(c *Client, groupID string) {
	sh := getShard(groupID)
	b := h.shards[sh]
	b.Lock()
	defer b.Unlock()

	room, ok := b.rooms[groupID]
	if !ok {
		room = make(map[string]*Client)
		b.rooms[groupID] = room
	}

	room[c.ID] = c
	c.addRoom(groupID)
	log.Printf("client %s joined room %s (shard %d)", c.ID, groupID, sh)
}

func (h *Hub) leaveRooms(c *Client) {
	for _, groupID := range c.joinedRooms() {
		sh := getShard(groupID)
		b := h.shards[sh]
		b.Lock()
		if room, ok := b.rooms[groupID]; ok {
			delete(room, c.ID)
			if len(room) == 0 {
				delete(b.rooms, groupID)
			}
		}
		b.Unlock()
	}
}

// removeClient tears down a terminated session: presence entry (supersede
// safe), room subscriptions, then the connection itself.
func (h *Hub) removeClient(c *Client) {
	h.presence.Remove(c)
	h.leaveRooms(c)
	c.Close()
	log.Printf("client %s removed", c.ID)
}

// -----------------------------------------------------------------
// Live delivery (service.Notifier)
// -----------------------------------------------------------------

// PushToUser delivers an event to the user's live connection, if any.
func (h *Hub) PushToUser(userID string, ev event.WsEvent) bool {
	c, ok := h.presence.Resolve(userID)
	if !ok {
		return false
	}
	return c.SafeSend(ev, sendTimeout)
}

// PushGroup fans an event out to every member of the group except
// exceptUserID: room subscribers first, then a presence lookup for members
// who never joined the room, de-duplicated by user.
func (h *Hub) PushGroup(group *model.Conversation, exceptUserID string, ev event.WsEvent) {
	groupID := group.ID.Hex()

	sh := getShard(groupID)
	b := h.shards[sh]

	// collect subscribers while holding RLock, deliver after
	b.RLock()
	subscribers := make([]*Client, 0, len(b.rooms[groupID]))
	for _, c := range b.rooms[groupID] {
		subscribers = append(subscribers, c)
	}
	b.RUnlock()

	delivered := make(map[string]bool)
	for _, c := range subscribers {
		userID := c.UserID()
		if userID == "" || userID == exceptUserID || delivered[userID] {
			continue
		}

		// joining a room grants nothing; only members receive the push
		uid, err := primitive.ObjectIDFromHex(userID)
		if err != nil || !group.HasMember(uid) {
			continue
		}

		delivered[userID] = true
		c.SafeSend(ev, sendTimeout)
	}

	for _, member := range group.Members {
		userID := member.Hex()
		if userID == exceptUserID || delivered[userID] {
			continue
		}
		h.PushToUser(userID, ev)
	}
}

// -----------------------------------------------------------------
// Transport
// -----------------------------------------------------------------

var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the excluded auth layer fronts this endpoint; identity is announced
	// in-band via the identify event
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request and starts an unidentified session.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	RegisterClient(conn, h)
}

// Stop closes every live session and halts the manager loop.
func (h *Hub) Stop() {
	h.cancel()

	for _, c := range h.presence.Clients() {
		c.Close()
	}

	for _, shard := range h.shards {
		shard.RLock()
		for _, room := range shard.rooms {
			for _, c := range room {
				c.Close()
			}
		}
		shard.RUnlock()
	}
}
