package game

import (
	"fmt"
	"time"
)

// Phase is the room's position in the game lifecycle.
type Phase string

const (
	PhaseLobby         Phase = "lobby"
	PhaseDealing       Phase = "dealing"
	PhasePlayerTurn    Phase = "player_turn"
	PhaseActionResolve Phase = "action_resolve"
	PhaseRoundEnd      Phase = "round_end"
	PhaseGameOver      Phase = "game_over"
)

// maxRecentEvents bounds the trailing event log kept for UI display.
const maxRecentEvents = 6

// PendingAction is the transient record of an action card awaiting a
// target. Exactly one may exist at a time; it is cleared on resolution.
type PendingAction struct {
	Action         ActionKind `json:"action"`
	SourcePlayerID string     `json:"sourcePlayerId"`
	TargetPlayerID string     `json:"targetPlayerId,omitempty"`
	CardsRemaining int        `json:"cardsRemaining,omitempty"`
}

// Room is the root aggregate for one game. All mutation goes through
// whole-snapshot transitions: callers clone, apply one transition, and
// commit the clone atomically.
type Room struct {
	RoomCode         string                  `json:"roomCode"`
	HostUID          string                  `json:"hostUid"`
	Phase            Phase                   `json:"phase"`
	Players          map[string]*PlayerState `json:"players"`
	PlayerOrder      []string                `json:"playerOrder"`
	DealerIndex      int                     `json:"dealerIndex"`
	CurrentTurnIndex int                     `json:"currentTurnIndex"`
	Deck             []Card                  `json:"deck"`
	Discard          []Card                  `json:"discard"`
	PendingAction    *PendingAction          `json:"pendingAction"`
	Round            int                     `json:"round"`
	WinnerUID        string                  `json:"winnerUid,omitempty"`
	LastEvent        string                  `json:"lastEvent"`
	RecentEvents     []string                `json:"recentEvents"`
	CreatedAt        int64                   `json:"createdAt"`
}

// NewRoom creates a room in the lobby phase with the host as sole player.
func NewRoom(code, hostUID, hostName string) *Room {
	r := &Room{
		RoomCode:     code,
		HostUID:      hostUID,
		Phase:        PhaseLobby,
		Players:      map[string]*PlayerState{hostUID: NewPlayerState(hostUID, hostName, true)},
		PlayerOrder:  []string{hostUID},
		Deck:         []Card{},
		Discard:      []Card{},
		RecentEvents: []string{},
		CreatedAt:    time.Now().UnixMilli(),
	}
	r.AppendEvent("%s created the room.", hostName)
	return r
}

// Clone returns a deep copy of the room snapshot.
func (r *Room) Clone() *Room {
	cp := *r
	cp.Players = make(map[string]*PlayerState, len(r.Players))
	for uid, p := range r.Players {
		cp.Players[uid] = p.Clone()
	}
	cp.PlayerOrder = append([]string(nil), r.PlayerOrder...)
	cp.Deck = append([]Card(nil), r.Deck...)
	cp.Discard = append([]Card(nil), r.Discard...)
	cp.RecentEvents = append([]string(nil), r.RecentEvents...)
	if r.PendingAction != nil {
		pa := *r.PendingAction
		cp.PendingAction = &pa
	}
	return &cp
}

// AppendEvent records a human-readable event, keeping the trailing log bounded.
func (r *Room) AppendEvent(format string, args ...any) {
	event := fmt.Sprintf(format, args...)
	r.LastEvent = event
	r.RecentEvents = append(r.RecentEvents, event)
	if len(r.RecentEvents) > maxRecentEvents {
		r.RecentEvents = r.RecentEvents[len(r.RecentEvents)-maxRecentEvents:]
	}
}

// Seat returns the identity seated at index i of the rotation.
func (r *Room) Seat(i int) string {
	return r.PlayerOrder[i%len(r.PlayerOrder)]
}

// TurnHolder returns the identity whose turn it currently is.
func (r *Room) TurnHolder() string {
	if len(r.PlayerOrder) == 0 {
		return ""
	}
	return r.Seat(r.CurrentTurnIndex)
}

// Seated reports whether uid occupies a seat in the rotation.
func (r *Room) Seated(uid string) bool {
	_, ok := r.Players[uid]
	return ok
}

// AddPlayer appends a new active seat. If the identity is already
// seated, only the display name is updated (reconnection).
func (r *Room) AddPlayer(uid, name string) {
	if p, ok := r.Players[uid]; ok {
		p.Name = name
		r.AppendEvent("%s reconnected.", name)
		return
	}
	r.Players[uid] = NewPlayerState(uid, name, false)
	r.PlayerOrder = append(r.PlayerOrder, uid)
	r.AppendEvent("%s joined the room.", name)
}

// anyActive reports whether any seat can still draw this round.
func (r *Room) anyActive() bool {
	for _, uid := range r.PlayerOrder {
		if r.Players[uid].Status == StatusActive {
			return true
		}
	}
	return false
}

// nextActiveSeat returns the index of the next active seat strictly
// after from, wrapping around the rotation. If no seat is active after
// a full lap it returns the first probed index; callers check anyActive
// before relying on it.
func (r *Room) nextActiveSeat(from int) int {
	n := len(r.PlayerOrder)
	next := (from + 1) % n
	for tries := 0; tries < n; tries++ {
		if r.Players[r.Seat(next)].Status == StatusActive {
			break
		}
		next = (next + 1) % n
	}
	return next
}

// firstActiveSeatAt returns the first active seat at or after index from.
func (r *Room) firstActiveSeatAt(from int) int {
	n := len(r.PlayerOrder)
	idx := from % n
	for tries := 0; tries < n; tries++ {
		if r.Players[r.Seat(idx)].Status == StatusActive {
			break
		}
		idx = (idx + 1) % n
	}
	return idx
}
