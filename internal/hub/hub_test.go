package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rojan-K/ChatAPP/internal/auth"
	"github.com/Rojan-K/ChatAPP/internal/event"
	"github.com/Rojan-K/ChatAPP/internal/model"
)

// -----------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------

type statusWrite struct {
	UserID int64
	Status string
}

type savedDirect struct {
	SenderID   int64
	ReceiverID int64
	Body       string
}

type savedGroup struct {
	GroupID  int64
	SenderID int64
	Body     string
}

type savedNotification struct {
	RecipientID int64
	SenderID    int64
	Kind        string
	Text        string
}

// fakeStore is an in-memory recording Store.
type fakeStore struct {
	mu sync.Mutex

	friends      map[int64][]model.Friend
	groupsOf     map[int64][]int64
	participants map[int64]map[int64]bool

	statusWrites  []statusWrite
	directsaves   []savedDirect
	groupSaves    []savedGroup
	notifications []savedNotification

	nextMessageID int64

	failSaveDirect   error
	failSaveGroup    error
	failStatusWrite  error
	failFriends      error
	failNotification error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		friends:      make(map[int64][]model.Friend),
		groupsOf:     make(map[int64][]int64),
		participants: make(map[int64]map[int64]bool),
	}
}

func (s *fakeStore) befriend(a, b int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friends[a] = append(s.friends[a], model.Friend{ID: b})
	s.friends[b] = append(s.friends[b], model.Friend{ID: a})
}

func (s *fakeStore) addGroup(groupID int64, userIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members, ok := s.participants[groupID]
	if !ok {
		members = make(map[int64]bool)
		s.participants[groupID] = members
	}
	for _, id := range userIDs {
		members[id] = true
		s.groupsOf[id] = append(s.groupsOf[id], groupID)
	}
}

func (s *fakeStore) SaveDirectMessage(_ context.Context, senderID, receiverID int64, body string) (SavedMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSaveDirect != nil {
		return SavedMessage{}, s.failSaveDirect
	}
	s.nextMessageID++
	s.directsaves = append(s.directsaves, savedDirect{SenderID: senderID, ReceiverID: receiverID, Body: body})
	return SavedMessage{MessageID: s.nextMessageID, ConversationID: 1}, nil
}

func (s *fakeStore) SaveGroupMessage(_ context.Context, groupID, senderID int64, body string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSaveGroup != nil {
		return 0, s.failSaveGroup
	}
	s.nextMessageID++
	s.groupSaves = append(s.groupSaves, savedGroup{GroupID: groupID, SenderID: senderID, Body: body})
	return s.nextMessageID, nil
}

func (s *fakeStore) UpdateUserStatus(_ context.Context, userID int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failStatusWrite != nil {
		return s.failStatusWrite
	}
	s.statusWrites = append(s.statusWrites, statusWrite{UserID: userID, Status: status})
	return nil
}

func (s *fakeStore) GetFriends(_ context.Context, userID int64) ([]model.Friend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFriends != nil {
		return nil, s.failFriends
	}
	return s.friends[userID], nil
}

func (s *fakeStore) IsGroupParticipant(_ context.Context, groupID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.participants[groupID][userID], nil
}

func (s *fakeStore) GetUserGroupIDs(_ context.Context, userID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupsOf[userID], nil
}

func (s *fakeStore) CreateNotification(_ context.Context, recipientID, senderID int64, kind, text string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNotification != nil {
		return 0, s.failNotification
	}
	s.notifications = append(s.notifications, savedNotification{
		RecipientID: recipientID, SenderID: senderID, Kind: kind, Text: text,
	})
	return int64(len(s.notifications)), nil
}

func (s *fakeStore) statusLog() []statusWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]statusWrite(nil), s.statusWrites...)
}

// fakeCreds maps bearer tokens to identities. When gate is set, Validate
// signals entered and then blocks until gate is closed, letting a test
// act while the handshake is in flight.
type fakeCreds struct {
	mu         sync.Mutex
	identities map[string]auth.Identity

	gate    chan struct{}
	entered chan struct{}
}

func newFakeCreds() *fakeCreds {
	return &fakeCreds{identities: make(map[string]auth.Identity)}
}

func (f *fakeCreds) add(token string, id auth.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identities[token] = id
}

func (f *fakeCreds) Validate(_ context.Context, token string) (auth.Identity, error) {
	f.mu.Lock()
	gate, entered := f.gate, f.entered
	id, ok := f.identities[token]
	f.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if gate != nil {
		<-gate
	}

	if !ok {
		return auth.Identity{}, errors.New("unknown token")
	}
	return id, nil
}

// -----------------------------------------------------------------
// Harness
// -----------------------------------------------------------------

type testHub struct {
	*Hub
	store *fakeStore
	creds *fakeCreds
}

func newTestHub(t *testing.T) *testHub {
	t.Helper()
	store := newFakeStore()
	creds := newFakeCreds()
	h := NewHub(store, creds, nil, zap.NewNop())
	t.Cleanup(h.Stop)
	return &testHub{Hub: h, store: store, creds: creds}
}

// connect opens a connection and completes the authentication handshake
// for the given user. The pumps are not started; delivered events are
// read straight off the egress buffer.
func (th *testHub) connect(t *testing.T, userID int64, name string) *Client {
	t.Helper()
	c := newClient(nil, th.Hub)
	token := fmt.Sprintf("token-%d-%s", userID, c.ID)
	th.creds.add(token, auth.Identity{
		UserID:      userID,
		Email:       fmt.Sprintf("user%d@example.com", userID),
		DisplayName: name,
	})
	th.command(c, event.CommandAuthenticate, event.AuthenticatePayload{Token: token})
	require.True(t, c.IsAuthenticated(), "handshake should succeed")
	return c
}

// command feeds one inbound frame through the handler synchronously.
func (th *testHub) command(c *Client, name string, payload any) {
	data, _ := json.Marshal(payload)
	th.handleEvent(event.WsEvent{Event: name, Data: data}, c)
}

func (th *testHub) disconnect(c *Client) {
	th.removeClient(c)
}

func nextEvent(t *testing.T, c *Client) event.WsEvent {
	t.Helper()
	select {
	case ev := <-c.egress:
		return ev
	case <-time.After(time.Second):
		t.Fatalf("no event delivered to client %s", c.ID)
		return event.WsEvent{}
	}
}

// requireEvent pops the next event, asserts its name and decodes its
// payload into dst.
func requireEvent(t *testing.T, c *Client, name string, dst any) {
	t.Helper()
	ev := nextEvent(t, c)
	require.Equal(t, name, ev.Event)
	if dst != nil {
		require.NoError(t, json.Unmarshal(ev.Data, dst))
	}
}

func requireNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case ev := <-c.egress:
		t.Fatalf("unexpected event %q delivered to client %s", ev.Event, c.ID)
	default:
	}
}

func drain(c *Client) {
	for {
		select {
		case <-c.egress:
		default:
			return
		}
	}
}

// -----------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------

// A read pump may still be handing frames to the worker queues while
// the hub shuts down. Stop must win that race without panicking and
// without stranding the sender.
func TestStopWhileFramesAreDispatching(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, 1, "Alice")
	drain(alice)

	data, _ := json.Marshal(event.TypingPayload{ReceiverID: 2})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			th.dispatch(alice, event.WsEvent{Event: event.CommandTypingStart, Data: data})
		}
	}()

	th.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher stuck after Stop")
	}

	// Stop is idempotent; the deferred cleanup calls it again.
	th.Stop()
}
