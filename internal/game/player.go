package game

// Status is the per-round state of a seated player.
type Status string

const (
	StatusActive Status = "active"
	StatusStayed Status = "stayed"
	StatusBusted Status = "busted"
	StatusFrozen Status = "frozen"
)

// PlayerState holds one seat's cards and scores.
//
// Invariants: a busted player holds zero cards in all three hand sets
// (they move to discard atomically with the status change), and
// HasSecondChance may be true only while the status is active.
type PlayerState struct {
	UID             string `json:"uid"`
	Name            string `json:"name"`
	NumberCards     []Card `json:"numberCards"`
	ModifierCards   []Card `json:"modifierCards"`
	ActionCards     []Card `json:"actionCards"`
	HasSecondChance bool   `json:"hasSecondChance"`
	Status          Status `json:"status"`
	RoundScore      int    `json:"roundScore"`
	TotalScore      int    `json:"totalScore"`
	IsDealer        bool   `json:"isDealer"`
}

// NewPlayerState seats a player with an empty hand.
func NewPlayerState(uid, name string, dealer bool) *PlayerState {
	return &PlayerState{
		UID:           uid,
		Name:          name,
		NumberCards:   []Card{},
		ModifierCards: []Card{},
		ActionCards:   []Card{},
		Status:        StatusActive,
		IsDealer:      dealer,
	}
}

// Clone returns a deep copy of the player state.
func (p *PlayerState) Clone() *PlayerState {
	cp := *p
	cp.NumberCards = append([]Card(nil), p.NumberCards...)
	cp.ModifierCards = append([]Card(nil), p.ModifierCards...)
	cp.ActionCards = append([]Card(nil), p.ActionCards...)
	return &cp
}

// HoldsNumber reports whether the player already holds a number card of value v.
func (p *PlayerState) HoldsNumber(v int) bool {
	for _, c := range p.NumberCards {
		if c.Value == v {
			return true
		}
	}
	return false
}

// handCards returns every card the player currently holds.
func (p *PlayerState) handCards() []Card {
	cards := make([]Card, 0, len(p.NumberCards)+len(p.ModifierCards)+len(p.ActionCards))
	cards = append(cards, p.NumberCards...)
	cards = append(cards, p.ModifierCards...)
	cards = append(cards, p.ActionCards...)
	return cards
}

// clearHands empties all three hand sets.
func (p *PlayerState) clearHands() {
	p.NumberCards = []Card{}
	p.ModifierCards = []Card{}
	p.ActionCards = []Card{}
}

// resetForRound returns the seat to a fresh active state, keeping the total score.
func (p *PlayerState) resetForRound(dealer bool) {
	p.clearHands()
	p.HasSecondChance = false
	p.Status = StatusActive
	p.RoundScore = 0
	p.IsDealer = dealer
}
