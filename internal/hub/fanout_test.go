package hub

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Rojan-K/ChatAPP/internal/event"
	"github.com/Rojan-K/ChatAPP/internal/model"
)

func TestDirectMessagePersistAndFanout(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, 1, "Alice")
	bob := th.connect(t, 2, "Bob")
	drain(alice)
	drain(bob)

	th.command(alice, event.CommandSendMessage, event.SendMessagePayload{
		ReceiverID: 2,
		Message:    "hello bob",
	})

	var got event.ReceiveMessagePayload
	requireEvent(t, bob, event.EventReceiveMessage, &got)
	require.Equal(t, int64(1), got.ID)
	require.Equal(t, int64(1), got.SenderID)
	require.Equal(t, "Alice", got.SenderName)
	require.Equal(t, int64(2), got.ReceiverID)
	require.Equal(t, "hello bob", got.Message)
	require.False(t, got.Read)
	require.NotEmpty(t, got.Timestamp)

	// Receiver is also told out-of-band that something arrived.
	var notif event.NewNotificationPayload
	requireEvent(t, bob, event.EventNewNotification, &notif)
	require.Equal(t, model.NotificationMessage, notif.Type)
	require.Equal(t, int64(1), notif.MessageID)

	// Sender's own connection gets the echo, but never the notification.
	var echo event.ReceiveMessagePayload
	requireEvent(t, alice, event.EventReceiveMessage, &echo)
	require.Equal(t, got.ID, echo.ID)
	requireNoEvent(t, alice)

	require.Len(t, th.store.directsaves, 1)
	require.Equal(t, savedDirect{SenderID: 1, ReceiverID: 2, Body: "hello bob"}, th.store.directsaves[0])
	require.Len(t, th.store.notifications, 1)
}

func TestDirectMessageRelayOnlySkipsPersistence(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, 1, "Alice")
	bob := th.connect(t, 2, "Bob")
	drain(alice)
	drain(bob)

	// messageId set means the HTTP API already persisted it.
	th.command(alice, event.CommandSendMessage, event.SendMessagePayload{
		ReceiverID: 2,
		Message:    "already saved",
		MessageID:  42,
	})

	var got event.ReceiveMessagePayload
	requireEvent(t, bob, event.EventReceiveMessage, &got)
	require.Equal(t, int64(42), got.ID)
	require.Empty(t, th.store.directsaves)
}

func TestDirectMessageToOfflineReceiver(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, 1, "Alice")
	drain(alice)

	th.command(alice, event.CommandSendMessage, event.SendMessagePayload{
		ReceiverID: 9,
		Message:    "are you there",
	})

	// Persisted and notified even though nobody is listening; the
	// receiver catches up over HTTP.
	require.Len(t, th.store.directsaves, 1)
	require.Len(t, th.store.notifications, 1)

	var echo event.ReceiveMessagePayload
	requireEvent(t, alice, event.EventReceiveMessage, &echo)
}

func TestDirectMessagePersistFailureAbortsFanout(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, 1, "Alice")
	bob := th.connect(t, 2, "Bob")
	drain(alice)
	drain(bob)

	th.store.failSaveDirect = errors.New("mongo down")

	th.command(alice, event.CommandSendMessage, event.SendMessagePayload{
		ReceiverID: 2,
		Message:    "lost",
	})

	var perr event.ErrorPayload
	requireEvent(t, alice, event.EventError, &perr)
	require.Equal(t, "failed to send message", perr.Message)
	requireNoEvent(t, bob)
	require.Empty(t, th.store.notifications)
}

func TestNotificationFailureDoesNotBlockDelivery(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, 1, "Alice")
	bob := th.connect(t, 2, "Bob")
	drain(alice)
	drain(bob)

	th.store.failNotification = errors.New("notifications collection gone")

	th.command(alice, event.CommandSendMessage, event.SendMessagePayload{
		ReceiverID: 2,
		Message:    "still delivered",
	})

	requireEvent(t, bob, event.EventReceiveMessage, nil)
	requireNoEvent(t, bob)
	require.Len(t, th.store.directsaves, 1)
}

func TestDeliveryDeduplicatedAcrossRooms(t *testing.T) {
	th := newTestHub(t)
	alice := th.connect(t, 1, "Alice")
	bob := th.connect(t, 2, "Bob")
	drain(alice)
	drain(bob)

	// Bob has the chat open, so his connection sits in the direct room
	// and his personal room at once.
	th.command(bob, event.CommandJoinChat, event.JoinChatPayload{UserID: 1})

	th.command(alice, event.CommandSendMessage, event.SendMessagePayload{
		ReceiverID: 2,
		Message:    "once only",
	})

	requireEvent(t, bob, event.EventReceiveMessage, nil)
	requireEvent(t, bob, event.EventNewNotification, nil)
	requireNoEvent(t, bob)
}

func TestDirectMessageEchoReachesOtherDevices(t *testing.T) {
	th := newTestHub(t)
	phone := th.connect(t, 1, "Alice")
	laptop := th.connect(t, 1, "Alice")
	bob := th.connect(t, 2, "Bob")
	drain(phone)
	drain(laptop)
	drain(bob)

	th.command(phone, event.CommandSendMessage, event.SendMessagePayload{
		ReceiverID: 2,
		Message:    "from my phone",
	})

	requireEvent(t, bob, event.EventReceiveMessage, nil)
	requireEvent(t, phone, event.EventReceiveMessage, nil)
	requireEvent(t, laptop, event.EventReceiveMessage, nil)
}

func TestGroupMessageFanout(t *testing.T) {
	th := newTestHub(t)
	th.store.addGroup(7, 1, 2, 3)

	alice := th.connect(t, 1, "Alice")
	bob := th.connect(t, 2, "Bob")
	carol := th.connect(t, 3, "Carol")
	drain(alice)
	drain(bob)
	drain(carol)

	th.command(alice, event.CommandSendGroupMessage, event.SendGroupMessagePayload{
		GroupID: 7,
		Message: "hi all",
	})

	for _, c := range []*Client{alice, bob, carol} {
		var got event.ReceiveGroupMessagePayload
		requireEvent(t, c, event.EventReceiveGroupMessage, &got)
		require.Equal(t, int64(7), got.GroupID)
		require.Equal(t, int64(1), got.SenderID)
		require.Equal(t, "hi all", got.Message)
	}

	require.Len(t, th.store.groupSaves, 1)
	require.Equal(t, savedGroup{GroupID: 7, SenderID: 1, Body: "hi all"}, th.store.groupSaves[0])
}

func TestGroupMessageRejectsNonParticipant(t *testing.T) {
	th := newTestHub(t)
	th.store.addGroup(7, 1, 2)

	alice := th.connect(t, 1, "Alice")
	mallory := th.connect(t, 9, "Mallory")
	drain(alice)
	drain(mallory)

	th.command(mallory, event.CommandSendGroupMessage, event.SendGroupMessagePayload{
		GroupID: 7,
		Message: "let me in",
	})

	var perr event.ErrorPayload
	requireEvent(t, mallory, event.EventError, &perr)
	require.Equal(t, "not a participant of this group", perr.Message)
	requireNoEvent(t, alice)
	require.Empty(t, th.store.groupSaves)
}

func TestGroupMessageRelayOnlySkipsPersistence(t *testing.T) {
	th := newTestHub(t)
	th.store.addGroup(7, 1, 2)

	alice := th.connect(t, 1, "Alice")
	bob := th.connect(t, 2, "Bob")
	drain(alice)
	drain(bob)

	th.command(alice, event.CommandSendGroupMessage, event.SendGroupMessagePayload{
		GroupID:   7,
		Message:   "relayed",
		MessageID: 100,
	})

	var got event.ReceiveGroupMessagePayload
	requireEvent(t, bob, event.EventReceiveGroupMessage, &got)
	require.Equal(t, int64(100), got.ID)
	require.Empty(t, th.store.groupSaves)
}

func TestGroupRoomsJoinedEagerlyOnConnect(t *testing.T) {
	th := newTestHub(t)
	th.store.addGroup(7, 1, 2)

	alice := th.connect(t, 1, "Alice")
	bob := th.connect(t, 2, "Bob")
	drain(alice)
	drain(bob)

	// Bob never sent join_group_chat; the eager join at registration is
	// what makes this arrive.
	th.command(alice, event.CommandSendGroupMessage, event.SendGroupMessagePayload{
		GroupID: 7,
		Message: "no join needed",
	})

	requireEvent(t, bob, event.EventReceiveGroupMessage, nil)
}
