package game

import (
	"testing"
)

// actionRoom builds a room with a pending action of the given kind
// sourced at the first seat, which holds the matching card.
func actionRoom(action ActionKind, uids ...string) *Room {
	r := testRoom(uids...)
	r.Phase = PhaseActionResolve
	r.Players[uids[0]].ActionCards = []Card{NewActionCard(action)}
	r.PendingAction = newPendingAction(r.Players[uids[0]].ActionCards[0], uids[0])
	return r
}

func TestResolveAction_OnlySourceMayResolve(t *testing.T) {
	r := actionRoom(ActionFreeze, "a", "b")
	if r.ResolveAction("b", "a") {
		t.Error("Expected resolution by a non-source player to be refused")
	}
	if r.PendingAction == nil {
		t.Error("Expected the pending action to survive a refused resolution")
	}
}

func TestResolveAction_WrongPhase(t *testing.T) {
	r := testRoom("a", "b")
	if r.ResolveAction("a", "b") {
		t.Error("Expected resolution outside action_resolve to be refused")
	}
}

func TestResolveAction_FreezeBanksTarget(t *testing.T) {
	r := actionRoom(ActionFreeze, "a", "b", "c")
	b := r.Players["b"]
	b.NumberCards = []Card{NewNumberCard(8)}

	if !r.ResolveAction("a", "b") {
		t.Fatal("Expected resolution to apply")
	}
	if b.Status != StatusFrozen {
		t.Errorf("Expected b frozen, got %s", b.Status)
	}
	if b.RoundScore != 8 || b.TotalScore != 8 {
		t.Errorf("Expected b banked 8, got round=%d total=%d", b.RoundScore, b.TotalScore)
	}
	if r.PendingAction != nil {
		t.Error("Expected pending action cleared")
	}
	if len(r.Players["a"].ActionCards) != 0 {
		t.Error("Expected the freeze card to leave the source hand")
	}
	if len(r.Discard) != 1 {
		t.Errorf("Expected the freeze card in discard, got %d cards", len(r.Discard))
	}
	if r.Phase != PhasePlayerTurn {
		t.Errorf("Expected phase player_turn, got %s", r.Phase)
	}
}

func TestResolveAction_FreezeSelfLastActiveSettles(t *testing.T) {
	r := actionRoom(ActionFreeze, "a", "b")
	r.Players["a"].NumberCards = []Card{NewNumberCard(6)}
	r.Players["b"].Status = StatusBusted

	if !r.ResolveAction("a", "a") {
		t.Fatal("Expected resolution to apply")
	}
	if r.Players["a"].TotalScore != 6 {
		t.Errorf("Expected a banked 6, got %d", r.Players["a"].TotalScore)
	}
	if r.Phase != PhaseRoundEnd {
		t.Errorf("Expected phase round_end with nobody active, got %s", r.Phase)
	}
}

func TestResolveAction_FreezeIneligibleTargetStillDiscards(t *testing.T) {
	r := actionRoom(ActionFreeze, "a", "b")
	b := r.Players["b"]
	b.Status = StatusBusted

	if !r.ResolveAction("a", "b") {
		t.Fatal("Expected resolution to apply")
	}
	if b.TotalScore != 0 {
		t.Errorf("Expected no banking for a busted target, got %d", b.TotalScore)
	}
	if r.PendingAction != nil {
		t.Error("Expected pending action cleared")
	}
	if len(r.Discard) != 1 {
		t.Error("Expected the card discarded despite the ineligible target")
	}
}

func TestResolveAction_SecondChanceGrantsShield(t *testing.T) {
	r := actionRoom(ActionSecondChance, "a", "b")

	if !r.ResolveAction("a", "b") {
		t.Fatal("Expected resolution to apply")
	}
	if !r.Players["b"].HasSecondChance {
		t.Error("Expected b to gain the shield")
	}
	if r.PendingAction != nil {
		t.Error("Expected pending action cleared")
	}
}

func TestResolveAction_SecondChanceDoesNotStack(t *testing.T) {
	r := actionRoom(ActionSecondChance, "a", "b")
	r.Players["b"].HasSecondChance = true

	if !r.ResolveAction("a", "b") {
		t.Fatal("Expected resolution to apply")
	}
	if len(r.Discard) != 1 {
		t.Error("Expected the redundant card discarded")
	}
	if !r.Players["b"].HasSecondChance {
		t.Error("Expected b to keep the existing shield")
	}
}

func TestResolveAction_FlipThreeDrawsThree(t *testing.T) {
	r := actionRoom(ActionFlipThree, "a", "b")
	r.Deck = []Card{NewNumberCard(1), NewNumberCard(2), NewNumberCard(3), NewNumberCard(4)}

	if !r.ResolveAction("a", "b") {
		t.Fatal("Expected resolution to apply")
	}
	b := r.Players["b"]
	if len(b.NumberCards) != 3 {
		t.Fatalf("Expected b to flip 3 cards, got %d", len(b.NumberCards))
	}
	if len(r.Deck) != 1 {
		t.Errorf("Expected 1 card left in deck, got %d", len(r.Deck))
	}
	if b.Status != StatusActive {
		t.Errorf("Expected b still active, got %s", b.Status)
	}
}

func TestResolveAction_FlipThreeBustStopsEarly(t *testing.T) {
	r := actionRoom(ActionFlipThree, "a", "b")
	b := r.Players["b"]
	b.NumberCards = []Card{NewNumberCard(4)}
	r.Deck = []Card{NewNumberCard(9), NewNumberCard(4), NewNumberCard(11)}

	if !r.ResolveAction("a", "b") {
		t.Fatal("Expected resolution to apply")
	}
	if b.Status != StatusBusted {
		t.Errorf("Expected b busted, got %s", b.Status)
	}
	// The third draw never happens.
	if len(r.Deck) != 1 {
		t.Errorf("Expected 1 card left in deck, got %d", len(r.Deck))
	}
	if r.Phase != PhasePlayerTurn {
		t.Errorf("Expected play to continue for a, got %s", r.Phase)
	}
}

func TestResolveAction_FlipThreeSecondChanceMidSequence(t *testing.T) {
	r := actionRoom(ActionFlipThree, "a", "b")
	b := r.Players["b"]
	b.NumberCards = []Card{NewNumberCard(4)}
	r.Deck = []Card{NewActionCard(ActionSecondChance), NewNumberCard(4), NewNumberCard(9)}

	if !r.ResolveAction("a", "b") {
		t.Fatal("Expected resolution to apply")
	}
	// The shield from the first draw absorbs the duplicate on the second.
	if b.Status != StatusActive {
		t.Errorf("Expected b to survive via the shield, got %s", b.Status)
	}
	if b.HasSecondChance {
		t.Error("Expected the shield consumed by the duplicate")
	}
	if got := len(b.NumberCards); got != 2 {
		t.Errorf("Expected b to hold 2 number cards, got %d", got)
	}
}

func TestResolveAction_FlipThreeBonusSettlesRound(t *testing.T) {
	r := actionRoom(ActionFlipThree, "a", "b")
	b := r.Players["b"]
	for v := 0; v <= 5; v++ {
		b.NumberCards = append(b.NumberCards, NewNumberCard(v))
	}
	r.Deck = []Card{NewNumberCard(6), NewNumberCard(7), NewNumberCard(8)}

	if !r.ResolveAction("a", "b") {
		t.Fatal("Expected resolution to apply")
	}
	if b.RoundScore != 36 {
		t.Errorf("Expected b to bank 21+15, got %d", b.RoundScore)
	}
	if r.Phase != PhaseRoundEnd {
		t.Errorf("Expected round settled, got %s", r.Phase)
	}
	// Only the first draw happened.
	if len(r.Deck) != 2 {
		t.Errorf("Expected 2 cards left in deck, got %d", len(r.Deck))
	}
}

func TestResolveAction_FlipThreeIneligibleTarget(t *testing.T) {
	r := actionRoom(ActionFlipThree, "a", "b")
	r.Players["b"].Status = StatusStayed
	r.Players["b"].RoundScore = 5
	r.Deck = []Card{NewNumberCard(9)}

	if !r.ResolveAction("a", "b") {
		t.Fatal("Expected resolution to apply")
	}
	if len(r.Deck) != 1 {
		t.Error("Expected no draws against an ineligible target")
	}
	if r.PendingAction != nil {
		t.Error("Expected pending action cleared")
	}
}
