package game

import (
	"testing"
)

func dealingRoom(uids ...string) *Room {
	r := testRoom(uids...)
	r.Phase = PhaseDealing
	return r
}

func TestDeal_OneCardPerSeatStartingAfterDealer(t *testing.T) {
	r := dealingRoom("a", "b", "c")
	r.DealerIndex = 0
	r.Deck = []Card{NewNumberCard(5), NewNumberCard(7), NewNumberCard(9)}

	r.deal()

	// Deal order is b, c, a.
	if v := r.Players["b"].NumberCards[0].Value; v != 5 {
		t.Errorf("Expected b dealt the 5, got %d", v)
	}
	if v := r.Players["c"].NumberCards[0].Value; v != 7 {
		t.Errorf("Expected c dealt the 7, got %d", v)
	}
	if v := r.Players["a"].NumberCards[0].Value; v != 9 {
		t.Errorf("Expected a dealt the 9, got %d", v)
	}
	if r.Phase != PhasePlayerTurn {
		t.Errorf("Expected phase player_turn, got %s", r.Phase)
	}
	if r.CurrentTurnIndex != 1 {
		t.Errorf("Expected first turn one seat after the dealer, got %d", r.CurrentTurnIndex)
	}
}

func TestDeal_ActionCardHaltsDeal(t *testing.T) {
	r := dealingRoom("a", "b", "c")
	r.DealerIndex = 0
	r.Deck = []Card{NewNumberCard(5), NewActionCard(ActionFreeze), NewNumberCard(9)}

	r.deal()

	if r.Phase != PhaseActionResolve {
		t.Fatalf("Expected phase action_resolve, got %s", r.Phase)
	}
	if r.PendingAction == nil || r.PendingAction.SourcePlayerID != "c" {
		t.Errorf("Expected pending action sourced at c, got %+v", r.PendingAction)
	}
	if r.CurrentTurnIndex != 2 {
		t.Errorf("Expected turn parked at the interrupted seat, got %d", r.CurrentTurnIndex)
	}
	// The seat after the interruption never got a card.
	if len(r.Players["a"].NumberCards) != 0 {
		t.Error("Expected a to be undealt after the interruption")
	}
	if len(r.Deck) != 1 {
		t.Errorf("Expected 1 undealt card remaining, got %d", len(r.Deck))
	}
}

func TestDeal_ReshufflesDiscard(t *testing.T) {
	r := dealingRoom("a", "b")
	r.DealerIndex = 0
	r.Discard = []Card{NewNumberCard(3)}

	r.deal()

	if len(r.Players["b"].NumberCards) != 1 {
		t.Error("Expected b dealt the reshuffled card")
	}
	// Both piles ran dry before a's card.
	if len(r.Players["a"].NumberCards) != 0 {
		t.Error("Expected a to enter the round empty-handed")
	}
	if r.Phase != PhasePlayerTurn {
		t.Errorf("Expected phase player_turn, got %s", r.Phase)
	}
}

func TestDeal_SkipsIneligibleSeats(t *testing.T) {
	r := dealingRoom("a", "b", "c")
	r.DealerIndex = 0
	r.Players["b"].Status = StatusFrozen
	r.Deck = []Card{NewNumberCard(5), NewNumberCard(7)}

	r.deal()

	if len(r.Players["b"].NumberCards) != 0 {
		t.Error("Expected the frozen seat to be skipped")
	}
	if v := r.Players["c"].NumberCards[0].Value; v != 5 {
		t.Errorf("Expected c dealt the 5, got %d", v)
	}
	if v := r.Players["a"].NumberCards[0].Value; v != 7 {
		t.Errorf("Expected a dealt the 7, got %d", v)
	}
	// First turn skips the frozen seat too.
	if r.CurrentTurnIndex != 2 {
		t.Errorf("Expected first turn at seat 2, got %d", r.CurrentTurnIndex)
	}
}
