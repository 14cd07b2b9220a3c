package models

import "fmt"

// GroupScope identifies what kind of fan-out target a GroupRef points at.
type GroupScope string

const (
	ScopeRoom    GroupScope = "room"
	ScopeChannel GroupScope = "channel"
	ScopeGlobal  GroupScope = "presence"
)

// GroupRef is a reference to anything connections can be fanned out to:
// a room, a channel, or the global presence group.
type GroupRef struct {
	Scope GroupScope `json:"scope"`
	ID    uint       `json:"id,omitempty"`
}

func RoomRef(id uint) GroupRef {
	return GroupRef{Scope: ScopeRoom, ID: id}
}

func ChannelRef(id uint) GroupRef {
	return GroupRef{Scope: ScopeChannel, ID: id}
}

func GlobalRef() GroupRef {
	return GroupRef{Scope: ScopeGlobal}
}

// Key returns the hub registry key for this group ("room:12", "channel:5",
// or "presence" for the global group).
func (g GroupRef) Key() string {
	if g.Scope == ScopeGlobal {
		return string(ScopeGlobal)
	}
	return fmt.Sprintf("%s:%d", g.Scope, g.ID)
}

func (g GroupRef) IsZero() bool {
	return g.Scope == ""
}
