package hub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Rojan-K/ChatAPP/internal/auth"
	"github.com/Rojan-K/ChatAPP/internal/event"
	"github.com/Rojan-K/ChatAPP/internal/room"
)

func TestCommandsRejectedBeforeAuthentication(t *testing.T) {
	th := newTestHub(t)
	c := newClient(nil, th.Hub)

	th.command(c, event.CommandSendMessage, event.SendMessagePayload{
		ReceiverID: 2,
		Message:    "too early",
	})

	var perr event.ErrorPayload
	requireEvent(t, c, event.EventError, &perr)
	require.Equal(t, "authentication required", perr.Message)
	require.False(t, c.IsAuthenticated())
	require.Empty(t, th.store.directsaves)
}

func TestAuthenticateBindsIdentity(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, 1, "Alice")

	require.Equal(t, int64(1), alice.UserID())
	require.Equal(t, "Alice", alice.UserName())
	require.Equal(t, "user1@example.com", alice.Email())

	// Registered and joined to the personal room.
	require.Len(t, th.ConnectionsFor(1), 1)
	members := th.membersOf(room.Personal(1))
	require.Len(t, members, 1)
	require.Equal(t, alice.ID, members[0].ID)
}

func TestAuthenticateFailureIsFatal(t *testing.T) {
	th := newTestHub(t)
	c := newClient(nil, th.Hub)

	th.command(c, event.CommandAuthenticate, event.AuthenticatePayload{Token: "forged"})

	var perr event.ErrorPayload
	requireEvent(t, c, event.EventError, &perr)
	require.Equal(t, "authentication failed", perr.Message)
	require.False(t, c.IsAuthenticated())

	// The connection is torn down, not left dangling in the
	// authenticating state.
	ev, _ := event.Outbound(event.EventError, event.ErrorPayload{Message: "x"})
	require.False(t, c.SafeSend(ev, 10*time.Millisecond))
	require.Empty(t, th.ConnectionsFor(0))
}

// A credential check that resolves after the connection was torn down
// (auth window expiry, peer disconnect) must not bring the session
// back: no registration, no room membership, no deliverable state.
func TestAuthenticateAfterCloseDoesNotRegister(t *testing.T) {
	th := newTestHub(t)
	c := newClient(nil, th.Hub)

	th.creds.add("slow", auth.Identity{UserID: 1, Email: "user1@example.com", DisplayName: "Alice"})
	th.creds.gate = make(chan struct{})
	th.creds.entered = make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		th.command(c, event.CommandAuthenticate, event.AuthenticatePayload{Token: "slow"})
	}()

	// Tear the connection down while the credential check is in flight,
	// then let the check finish.
	<-th.creds.entered
	c.Close()
	close(th.creds.gate)
	<-done

	require.False(t, c.IsAuthenticated())
	require.Empty(t, th.ConnectionsFor(1))
	require.Empty(t, th.membersOf(room.Personal(1)))

	// The dead session stays undeliverable; fanout to the user is a
	// clean no-op rather than a panic.
	ev, _ := event.Outbound(event.EventError, event.ErrorPayload{Message: "x"})
	require.False(t, c.SafeSend(ev, 10*time.Millisecond))
	th.EmitToUser(1, event.EventNewNotification, event.NewNotificationPayload{Type: "message"})
}

func TestAuthenticateTwiceRejected(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, 1, "Alice")
	drain(alice)

	th.command(alice, event.CommandAuthenticate, event.AuthenticatePayload{Token: "whatever"})

	var perr event.ErrorPayload
	requireEvent(t, alice, event.EventError, &perr)
	require.Equal(t, "already authenticated", perr.Message)
	require.True(t, alice.IsAuthenticated())
}

func TestInvalidPayloadIsRecoverable(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, 1, "Alice")
	drain(alice)

	th.command(alice, event.CommandSendMessage, event.SendMessagePayload{
		Message: "no receiver",
	})

	var perr event.ErrorPayload
	requireEvent(t, alice, event.EventError, &perr)
	require.Equal(t, "invalid payload", perr.Message)

	// One bad command does not cost the session.
	require.True(t, alice.IsAuthenticated())
	th.command(alice, event.CommandJoinChat, event.JoinChatPayload{UserID: 2})
	requireNoEvent(t, alice)
}

func TestMissingPayloadRejected(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, 1, "Alice")
	drain(alice)

	th.handleEvent(event.WsEvent{Event: event.CommandJoinChat}, alice)

	var perr event.ErrorPayload
	requireEvent(t, alice, event.EventError, &perr)
	require.Equal(t, "missing payload", perr.Message)
}

func TestUnknownCommandRejected(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, 1, "Alice")
	drain(alice)

	th.command(alice, "self_destruct", struct{}{})

	var perr event.ErrorPayload
	requireEvent(t, alice, event.EventError, &perr)
	require.Equal(t, "unknown command", perr.Message)
}

func TestJoinChatSharesOneRoom(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, 1, "Alice")
	bob := th.connect(t, 2, "Bob")
	drain(alice)
	drain(bob)

	// Either side joining lands in the same pair room regardless of who
	// initiates.
	th.command(alice, event.CommandJoinChat, event.JoinChatPayload{UserID: 2})
	th.command(bob, event.CommandJoinChat, event.JoinChatPayload{UserID: 1})

	members := th.membersOf(room.Direct(2, 1))
	require.Len(t, members, 2)
}

func TestJoinChatIsIdempotent(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, 1, "Alice")
	drain(alice)

	th.command(alice, event.CommandJoinChat, event.JoinChatPayload{UserID: 2})
	th.command(alice, event.CommandJoinChat, event.JoinChatPayload{UserID: 2})

	require.Len(t, th.membersOf(room.Direct(1, 2)), 1)
	requireNoEvent(t, alice)
}

func TestJoinGroupChatRequiresMembership(t *testing.T) {
	th := newTestHub(t)
	th.store.addGroup(7, 2)

	alice := th.connect(t, 1, "Alice")
	drain(alice)

	th.command(alice, event.CommandJoinGroupChat, event.JoinGroupChatPayload{GroupID: 7})

	var perr event.ErrorPayload
	requireEvent(t, alice, event.EventError, &perr)
	require.Equal(t, "not a participant of this group", perr.Message)
	require.Empty(t, th.membersOf(room.Group(7)))
}

func TestDisconnectLeavesAllRooms(t *testing.T) {
	th := newTestHub(t)
	th.store.addGroup(7, 1)

	alice := th.connect(t, 1, "Alice")
	th.command(alice, event.CommandJoinChat, event.JoinChatPayload{UserID: 2})

	th.disconnect(alice)

	require.Empty(t, th.membersOf(room.Personal(1)))
	require.Empty(t, th.membersOf(room.Direct(1, 2)))
	require.Empty(t, th.membersOf(room.Group(7)))
	require.Empty(t, th.ConnectionsFor(1))
}
