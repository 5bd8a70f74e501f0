package hub

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Rojan-K/ChatAPP/internal/event"
)

func TestOnlineBroadcastOnFirstConnection(t *testing.T) {
	th := newTestHub(t)
	th.store.befriend(1, 2)

	bob := th.connect(t, 2, "Bob")
	drain(bob)

	th.connect(t, 1, "Alice")

	var got event.FriendStatusChangePayload
	requireEvent(t, bob, event.EventFriendStatusChange, &got)
	require.Equal(t, int64(1), got.UserID)
	require.Equal(t, event.StatusOnline, got.Status)

	log := th.store.statusLog()
	require.Contains(t, log, statusWrite{UserID: 1, Status: event.StatusOnline})
}

func TestSecondConnectionDoesNotRebroadcastOnline(t *testing.T) {
	th := newTestHub(t)
	th.store.befriend(1, 2)

	bob := th.connect(t, 2, "Bob")
	th.connect(t, 1, "Alice")
	drain(bob)

	th.connect(t, 1, "Alice")

	requireNoEvent(t, bob)

	var onlines int
	for _, w := range th.store.statusLog() {
		if w.UserID == 1 && w.Status == event.StatusOnline {
			onlines++
		}
	}
	require.Equal(t, 1, onlines)
}

func TestOfflineOnlyAfterLastDisconnect(t *testing.T) {
	th := newTestHub(t)
	th.store.befriend(1, 2)

	bob := th.connect(t, 2, "Bob")
	phone := th.connect(t, 1, "Alice")
	laptop := th.connect(t, 1, "Alice")
	drain(bob)

	th.disconnect(phone)
	requireNoEvent(t, bob)

	th.disconnect(laptop)

	var got event.FriendStatusChangePayload
	requireEvent(t, bob, event.EventFriendStatusChange, &got)
	require.Equal(t, int64(1), got.UserID)
	require.Equal(t, event.StatusOffline, got.Status)
}

func TestManualStatusChange(t *testing.T) {
	th := newTestHub(t)
	th.store.befriend(1, 2)

	bob := th.connect(t, 2, "Bob")
	alice := th.connect(t, 1, "Alice")
	drain(bob)
	drain(alice)

	th.command(alice, event.CommandUserStatusChange, event.StatusChangePayload{
		Status: event.StatusOffline,
	})

	var got event.FriendStatusChangePayload
	requireEvent(t, bob, event.EventFriendStatusChange, &got)
	require.Equal(t, event.StatusOffline, got.Status)
	require.Contains(t, th.store.statusLog(), statusWrite{UserID: 1, Status: event.StatusOffline})
}

func TestStatusWriteFailureSuppressesBroadcast(t *testing.T) {
	th := newTestHub(t)
	th.store.befriend(1, 2)

	bob := th.connect(t, 2, "Bob")
	alice := th.connect(t, 1, "Alice")
	drain(bob)
	drain(alice)

	th.store.failStatusWrite = errors.New("mongo down")

	th.command(alice, event.CommandUserStatusChange, event.StatusChangePayload{
		Status: event.StatusOffline,
	})

	var perr event.ErrorPayload
	requireEvent(t, alice, event.EventError, &perr)
	require.Equal(t, "failed to update status", perr.Message)
	requireNoEvent(t, bob)
}

func TestFriendsLookupFailureStillPersistsStatus(t *testing.T) {
	th := newTestHub(t)
	th.store.befriend(1, 2)

	bob := th.connect(t, 2, "Bob")
	alice := th.connect(t, 1, "Alice")
	drain(bob)
	drain(alice)

	th.store.failFriends = errors.New("friends collection gone")

	th.command(alice, event.CommandUserStatusChange, event.StatusChangePayload{
		Status: event.StatusOffline,
	})

	// The write landed; only the broadcast is lost.
	require.Contains(t, th.store.statusLog(), statusWrite{UserID: 1, Status: event.StatusOffline})
	requireNoEvent(t, alice)
	requireNoEvent(t, bob)
}

func TestTypingRelayDirect(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, 1, "Alice")
	bob := th.connect(t, 2, "Bob")
	drain(alice)
	drain(bob)

	th.command(alice, event.CommandTypingStart, event.TypingPayload{ReceiverID: 2})

	var got event.UserTypingPayload
	requireEvent(t, bob, event.EventUserTyping, &got)
	require.Equal(t, int64(1), got.UserID)
	require.Equal(t, "Alice", got.UserName)
	require.True(t, got.IsTyping)
	// chatId names the conversation from the receiver's point of view.
	require.Equal(t, int64(1), got.ChatID)

	th.command(alice, event.CommandTypingStop, event.TypingPayload{ReceiverID: 2})

	requireEvent(t, bob, event.EventUserTyping, &got)
	require.False(t, got.IsTyping)
	requireNoEvent(t, alice)
}

func TestTypingRelayGroupExcludesSender(t *testing.T) {
	th := newTestHub(t)
	th.store.addGroup(7, 1, 2, 3)

	phone := th.connect(t, 1, "Alice")
	laptop := th.connect(t, 1, "Alice")
	bob := th.connect(t, 2, "Bob")
	carol := th.connect(t, 3, "Carol")
	drain(phone)
	drain(laptop)
	drain(bob)
	drain(carol)

	th.command(phone, event.CommandTypingStart, event.TypingPayload{GroupID: 7})

	for _, c := range []*Client{bob, carol} {
		var got event.UserTypingPayload
		requireEvent(t, c, event.EventUserTyping, &got)
		require.Equal(t, int64(1), got.UserID)
		require.Equal(t, int64(7), got.ChatID)
		require.True(t, got.IsTyping)
	}

	// Every connection of the typing user is excluded, not just the one
	// that sent the command.
	requireNoEvent(t, phone)
	requireNoEvent(t, laptop)
}
