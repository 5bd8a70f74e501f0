package room

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the three room families the hub maintains.
type Kind int

const (
	KindPersonal Kind = iota + 1
	KindDirect
	KindGroup
)

// Room is a typed room identity. Rooms are never persisted; they are
// rebuilt from authorization data as users connect. The canonical wire
// string produced by ID() is part of the client protocol: clients
// pre-compute direct-room names for optimistic joins, so the format
// must not drift.
type Room struct {
	kind Kind
	a    int64 // userID for personal, low participant for direct, groupID for group
	b    int64 // high participant for direct, unused otherwise
}

// Personal is the per-user inbox room. Every connection a user holds
// auto-joins it right after authentication.
func Personal(userID int64) Room {
	return Room{kind: KindPersonal, a: userID}
}

// Direct is the room shared by a pair of users. The identifier is
// symmetric: Direct(a, b) == Direct(b, a).
func Direct(userA, userB int64) Room {
	if userA > userB {
		userA, userB = userB, userA
	}
	return Room{kind: KindDirect, a: userA, b: userB}
}

// Group is the room shared by all participants of a group chat.
func Group(groupID int64) Room {
	return Room{kind: KindGroup, a: groupID}
}

func (r Room) Kind() Kind { return r.kind }

func (k Kind) String() string {
	switch k {
	case KindPersonal:
		return "personal"
	case KindDirect:
		return "direct"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// ID returns the canonical wire identifier:
//
//	user:<userId>
//	dm:<minId>_<maxId>
//	group:<groupId>
func (r Room) ID() string {
	switch r.kind {
	case KindPersonal:
		return "user:" + strconv.FormatInt(r.a, 10)
	case KindDirect:
		return fmt.Sprintf("dm:%d_%d", r.a, r.b)
	case KindGroup:
		return "group:" + strconv.FormatInt(r.a, 10)
	default:
		return ""
	}
}

func (r Room) String() string { return r.ID() }

// Participants returns the two user ids of a direct room in ascending
// order. Only meaningful for KindDirect.
func (r Room) Participants() (int64, int64) {
	return r.a, r.b
}

// Parse converts a wire identifier back into a typed Room. Used when a
// client supplies a room name it computed itself.
func Parse(id string) (Room, error) {
	switch {
	case strings.HasPrefix(id, "user:"):
		uid, err := strconv.ParseInt(id[len("user:"):], 10, 64)
		if err != nil {
			return Room{}, fmt.Errorf("invalid personal room %q: %w", id, err)
		}
		return Personal(uid), nil
	case strings.HasPrefix(id, "dm:"):
		parts := strings.SplitN(id[len("dm:"):], "_", 2)
		if len(parts) != 2 {
			return Room{}, fmt.Errorf("invalid direct room %q", id)
		}
		a, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return Room{}, fmt.Errorf("invalid direct room %q: %w", id, err)
		}
		b, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return Room{}, fmt.Errorf("invalid direct room %q: %w", id, err)
		}
		return Direct(a, b), nil
	case strings.HasPrefix(id, "group:"):
		gid, err := strconv.ParseInt(id[len("group:"):], 10, 64)
		if err != nil {
			return Room{}, fmt.Errorf("invalid group room %q: %w", id, err)
		}
		return Group(gid), nil
	default:
		return Room{}, fmt.Errorf("unknown room identifier %q", id)
	}
}
