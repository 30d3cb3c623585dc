package game

import (
	"fmt"

	"github.com/google/uuid"
)

// CardKind discriminates the three card families in the deck.
type CardKind string

const (
	KindNumber   CardKind = "number"
	KindModifier CardKind = "modifier"
	KindAction   CardKind = "action"
)

// ActionKind identifies a targeted action card. Empty for non-action cards.
type ActionKind string

const (
	ActionFreeze       ActionKind = "freeze"
	ActionFlipThree    ActionKind = "flip_three"
	ActionSecondChance ActionKind = "second_chance"
)

func (a ActionKind) String() string {
	switch a {
	case ActionFreeze:
		return "FREEZE"
	case ActionFlipThree:
		return "FLIP THREE"
	case ActionSecondChance:
		return "SECOND CHANCE"
	default:
		return string(a)
	}
}

// Card is an immutable deck card. Cards never change after construction;
// they only move between the deck, a player's hand sets, and the discard pile.
type Card struct {
	ID       string     `json:"id"`
	Kind     CardKind   `json:"type"`
	Value    int        `json:"value"`
	IsDouble bool       `json:"isDouble,omitempty"`
	Action   ActionKind `json:"action,omitempty"`
	Label    string     `json:"label"`
}

// NewNumberCard constructs a number card with value v.
func NewNumberCard(v int) Card {
	return Card{
		ID:    fmt.Sprintf("num_%d_%s", v, uuid.NewString()),
		Kind:  KindNumber,
		Value: v,
		Label: fmt.Sprintf("%d", v),
	}
}

// NewModifierCard constructs an additive modifier card (+v).
func NewModifierCard(v int) Card {
	return Card{
		ID:    fmt.Sprintf("mod_plus%d_%s", v, uuid.NewString()),
		Kind:  KindModifier,
		Value: v,
		Label: fmt.Sprintf("+%d", v),
	}
}

// NewDoubleCard constructs the single multiplicative x2 modifier.
func NewDoubleCard() Card {
	return Card{
		ID:       fmt.Sprintf("mod_x2_%s", uuid.NewString()),
		Kind:     KindModifier,
		Value:    2,
		IsDouble: true,
		Label:    "x2",
	}
}

// NewActionCard constructs an action card of the given kind.
func NewActionCard(action ActionKind) Card {
	return Card{
		ID:     fmt.Sprintf("action_%s_%s", action, uuid.NewString()),
		Kind:   KindAction,
		Action: action,
		Label:  action.String(),
	}
}
