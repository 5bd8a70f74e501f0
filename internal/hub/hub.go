package hub

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.uber.org/zap"

	validator "github.com/go-playground/validator/v10"

	"github.com/Rojan-K/ChatAPP/internal/event"
	"github.com/Rojan-K/ChatAPP/internal/room"
)

const (
	shardCount     = 32 // room topology shards
	workerPoolSize = 16 // inbound worker queues, one per hash bucket
)

type inboundMessage struct {
	event  event.WsEvent
	client *Client
}

// roomBucket is one shard of the room topology: room id -> client id ->
// client. Membership lives in these identity maps, never on a shared
// object graph, so a connection leaving many rooms at once cannot alias
// state it no longer owns.
type roomBucket struct {
	sync.RWMutex
	rooms map[string]map[string]*Client
}

// Hub owns the connection registry, the room topology, presence and
// message fanout. One instance is constructed at process start and torn
// down at shutdown.
type Hub struct {
	shards [shardCount]*roomBucket

	// users is the connection registry: user id -> client id -> client.
	users   map[int64]map[string]*Client
	usersMu sync.RWMutex

	unregister chan *Client
	inbound    [workerPoolSize]chan inboundMessage

	store    Store
	creds    CredentialValidator
	validate *validator.Validate
	logger   *zap.Logger

	allowedOrigins map[string]struct{}
	upgrader       websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHub builds the hub and starts its run loop and worker pool.
func NewHub(store Store, creds CredentialValidator, allowedOrigins []string, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		users:      make(map[int64]map[string]*Client),
		unregister: make(chan *Client, 1024),
		store:      store,
		creds:      creds,
		validate:   validator.New(),
		logger:     logger,
		allowedOrigins: lo.SliceToMap(allowedOrigins, func(o string) (string, struct{}) {
			return o, struct{}{}
		}),
		ctx:    ctx,
		cancel: cancel,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	for i := 0; i < shardCount; i++ {
		h.shards[i] = &roomBucket{rooms: make(map[string]map[string]*Client)}
	}

	go h.run()

	// One queue per worker, frames hashed by client id onto a fixed
	// queue: commands from one connection are never reordered, commands
	// from different connections may interleave.
	for i := 0; i < workerPoolSize; i++ {
		h.inbound[i] = make(chan inboundMessage, 256)
		h.wg.Add(1)
		go func(queue chan inboundMessage) {
			defer h.wg.Done()
			for {
				select {
				case <-h.ctx.Done():
					return
				case in := <-queue:
					h.handleEvent(in.event, in.client)
				}
			}
		}(h.inbound[i])
	}

	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.unregister:
			h.removeClient(c)
		}
	}
}

// dispatch hands a frame to the worker queue owned by this connection.
// Returns false when the queue stayed full past the timeout.
func (h *Hub) dispatch(c *Client, ev event.WsEvent) bool {
	queue := h.inbound[bucketFor(c.ID, workerPoolSize)]
	select {
	case queue <- inboundMessage{event: ev, client: c}:
		return true
	case <-time.After(inboundSendTimeout):
		return false
	case <-c.ctx.Done():
		return true // client is going away, frame no longer matters
	}
}

func bucketFor(id string, buckets uint32) uint32 {
	f := fnv.New32a()
	f.Write([]byte(id))
	return f.Sum32() % buckets
}

func (h *Hub) shardFor(roomID string) *roomBucket {
	return h.shards[bucketFor(roomID, shardCount)]
}

// -----------------------------------------------------------------
// Connection registry
// -----------------------------------------------------------------

// registerAuthenticated binds a freshly authenticated client into the
// registry, joins its personal room, eagerly joins every group room it
// participates in, and fires the online presence transition when this
// is the user's first live connection.
func (h *Hub) registerAuthenticated(c *Client) {
	userID := c.UserID()

	h.usersMu.Lock()
	conns, ok := h.users[userID]
	if !ok {
		conns = make(map[string]*Client)
		h.users[userID] = conns
	}
	first := len(conns) == 0
	conns[c.ID] = c
	h.usersMu.Unlock()

	h.joinRoom(c, room.Personal(userID))
	h.autoJoinAllGroups(c)

	if first {
		ctx, cancel := context.WithTimeout(h.ctx, 5*time.Second)
		defer cancel()
		h.setUserStatus(ctx, userID, event.StatusOnline)
	}

	h.logger.Info("client registered",
		zap.String("client", c.ID),
		zap.Int64("user", userID),
	)
}

// removeClient leaves every room, drops the client from the registry
// and fires the offline presence transition when this was the user's
// last live connection.
func (h *Hub) removeClient(c *Client) {
	for _, roomID := range c.roomList() {
		h.leaveRoomID(c, roomID)
	}

	userID := c.UserID()
	last := false
	if userID != 0 {
		h.usersMu.Lock()
		if conns, ok := h.users[userID]; ok {
			delete(conns, c.ID)
			if len(conns) == 0 {
				delete(h.users, userID)
				last = true
			}
		}
		h.usersMu.Unlock()
	}

	c.Close()

	if last {
		ctx, cancel := context.WithTimeout(h.ctx, 5*time.Second)
		defer cancel()
		h.setUserStatus(ctx, userID, event.StatusOffline)
	}

	h.logger.Info("client removed",
		zap.String("client", c.ID),
		zap.Int64("user", userID),
		zap.Bool("last_connection", last),
	)
}

// ConnectionsFor returns every live connection the user holds.
func (h *Hub) ConnectionsFor(userID int64) []*Client {
	h.usersMu.RLock()
	defer h.usersMu.RUnlock()
	conns, ok := h.users[userID]
	if !ok {
		return nil
	}
	return lo.Values(conns)
}

// -----------------------------------------------------------------
// Room membership
// -----------------------------------------------------------------

// joinRoom adds the client to a room. Idempotent: joining a room the
// client is already in is a no-op.
func (h *Hub) joinRoom(c *Client, r room.Room) {
	roomID := r.ID()
	b := h.shardFor(roomID)

	b.Lock()
	members, ok := b.rooms[roomID]
	if !ok {
		members = make(map[string]*Client)
		b.rooms[roomID] = members
	}
	if _, joined := members[c.ID]; joined {
		b.Unlock()
		return
	}
	members[c.ID] = c
	b.Unlock()

	c.trackRoom(roomID)
	h.logger.Debug("client joined room",
		zap.String("client", c.ID), zap.String("room", roomID))
}

func (h *Hub) leaveRoomID(c *Client, roomID string) {
	b := h.shardFor(roomID)

	b.Lock()
	if members, ok := b.rooms[roomID]; ok {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(b.rooms, roomID)
		}
	}
	b.Unlock()

	c.untrackRoom(roomID)
}

// membersOf snapshots the clients currently joined to a room.
func (h *Hub) membersOf(r room.Room) []*Client {
	return h.membersOfID(r.ID())
}

func (h *Hub) membersOfID(roomID string) []*Client {
	b := h.shardFor(roomID)
	b.RLock()
	defer b.RUnlock()
	members, ok := b.rooms[roomID]
	if !ok {
		return nil
	}
	return lo.Values(members)
}

// autoJoinAllGroups joins the client to every group room its user
// participates in, so group messages arrive without the group chat ever
// being opened. Store failure here degrades to on-demand joins.
func (h *Hub) autoJoinAllGroups(c *Client) {
	ctx, cancel := context.WithTimeout(h.ctx, 5*time.Second)
	defer cancel()

	groupIDs, err := h.store.GetUserGroupIDs(ctx, c.UserID())
	if err != nil {
		h.logger.Warn("eager group join failed",
			zap.Int64("user", c.UserID()), zap.Error(err))
		return
	}
	for _, gid := range groupIDs {
		h.joinRoom(c, room.Group(gid))
	}
}

// -----------------------------------------------------------------
// Delivery
// -----------------------------------------------------------------

// deliver sends one event to each client exactly once, deduplicating by
// client id. A client that vanished between audience resolution and
// delivery is skipped silently.
func (h *Hub) deliver(clients []*Client, ev event.WsEvent) {
	unique := lo.UniqBy(clients, func(c *Client) string { return c.ID })
	for _, c := range unique {
		if !c.SafeSend(ev, sendTimeout) {
			h.logger.Debug("skipped delivery to vanished client",
				zap.String("client", c.ID))
		}
	}
}

// EmitToUser broadcasts an event to every live connection in the user's
// personal room. Used by the HTTP layer for friend-request and group
// lifecycle events.
func (h *Hub) EmitToUser(userID int64, name string, payload any) {
	ev, err := event.Outbound(name, payload)
	if err != nil {
		h.logger.Error("marshal outbound event failed",
			zap.String("event", name), zap.Error(err))
		return
	}
	h.deliver(h.membersOf(room.Personal(userID)), ev)
}

// EmitToGroup broadcasts an event to every connection joined to the
// group's room.
func (h *Hub) EmitToGroup(groupID int64, name string, payload any) {
	ev, err := event.Outbound(name, payload)
	if err != nil {
		h.logger.Error("marshal outbound event failed",
			zap.String("event", name), zap.Error(err))
		return
	}
	h.deliver(h.membersOf(room.Group(groupID)), ev)
}

// -----------------------------------------------------------------
// Transport
// -----------------------------------------------------------------

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	_, ok := h.allowedOrigins[origin]
	return ok
}

// ServeWS upgrades the HTTP request and starts the connection in the
// authenticating state. A token supplied as a query parameter is
// treated as an immediate authenticate command; otherwise the client
// has the handshake window to send one.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(conn, h)
	c.authTimer = time.AfterFunc(authWindow, func() {
		if !c.IsAuthenticated() {
			c.SendError("authentication timed out")
			c.Close()
		}
	})

	go c.readPump()
	go c.writePump()

	if token := r.URL.Query().Get("token"); token != "" {
		data, _ := json.Marshal(event.AuthenticatePayload{Token: token})
		h.dispatch(c, event.WsEvent{Event: event.CommandAuthenticate, Data: data})
	}

	h.logger.Debug("client connected", zap.String("client", c.ID))
}

// Stop shuts the hub down: closes every client and stops the workers.
// The inbound queues are left open; read pumps may still be trying to
// enqueue, and the workers exit on the cancelled context regardless.
func (h *Hub) Stop() {
	h.cancel()

	for _, shard := range h.shards {
		shard.RLock()
		for _, members := range shard.rooms {
			for _, c := range members {
				c.Close()
			}
		}
		shard.RUnlock()
	}

	h.wg.Wait()
}
