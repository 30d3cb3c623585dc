package game

// The turn engine. Every exported transition takes a cloned snapshot as
// its receiver, checks its preconditions against that snapshot, and
// reports whether it applied. A false return means the snapshot was left
// untouched and nothing should be committed.

// drawNext takes the next card from the draw pile, reshuffling the
// discard pile into a fresh draw pile when needed. Returns false when
// both piles are exhausted.
func (r *Room) drawNext() (Card, bool) {
	if len(r.Deck) == 0 {
		if len(r.Discard) == 0 {
			return Card{}, false
		}
		r.Deck = Shuffle(r.Discard)
		r.Discard = []Card{}
	}
	card := r.Deck[0]
	r.Deck = r.Deck[1:]
	return card, true
}

// bankScore banks the player's current hand score into the round and
// total scores, marking the seat as scored for this transition.
func (r *Room) bankScore(uid string, scored map[string]bool) int {
	p := r.Players[uid]
	rs := HandScore(p)
	p.RoundScore = rs
	p.TotalScore += rs
	scored[uid] = true
	return rs
}

// bust moves all of the player's hand cards plus the offending card to
// discard and marks the seat busted. The round contributes nothing.
func (r *Room) bust(uid string, card Card) {
	p := r.Players[uid]
	r.Discard = append(r.Discard, p.handCards()...)
	r.Discard = append(r.Discard, card)
	p.clearHands()
	p.HasSecondChance = false
	p.Status = StatusBusted
	p.RoundScore = 0
}

// consumeShield absorbs a would-be bust: the shield is cleared, the
// duplicate card and any held second-chance cards are discarded, and
// nothing else leaves the hand.
func (r *Room) consumeShield(uid string, card Card) {
	p := r.Players[uid]
	p.HasSecondChance = false
	kept := p.ActionCards[:0]
	for _, c := range p.ActionCards {
		if c.Action == ActionSecondChance {
			r.Discard = append(r.Discard, c)
		} else {
			kept = append(kept, c)
		}
	}
	p.ActionCards = kept
	r.Discard = append(r.Discard, card)
}

// triggerFlipSeven handles the seven-distinct-values bonus: the player
// banks score+15, every other still-active seat banks its current score,
// and the round settles unconditionally.
func (r *Room) triggerFlipSeven(uid string, scored map[string]bool) {
	p := r.Players[uid]
	rs := HandScore(p) + BonusScore
	p.RoundScore = rs
	p.TotalScore += rs
	p.Status = StatusStayed
	p.HasSecondChance = false
	scored[uid] = true
	r.AppendEvent("%s flipped 7! +%d bonus! Round over!", p.Name, BonusScore)

	for _, other := range r.PlayerOrder {
		op := r.Players[other]
		if other != uid && op.Status == StatusActive {
			r.bankScore(other, scored)
			op.Status = StatusStayed
			op.HasSecondChance = false
		}
	}

	r.PendingAction = nil
	r.finishRound()
}

// finishRound banks are complete: pick a winner at or above the
// threshold, or park the room at round_end.
func (r *Room) finishRound() {
	for _, uid := range r.PlayerOrder {
		if r.Players[uid].TotalScore >= WinningScore {
			r.WinnerUID = uid
			r.Phase = PhaseGameOver
			r.AppendEvent("%s wins with %d points!", r.Players[uid].Name, r.Players[uid].TotalScore)
			return
		}
	}
	r.Phase = PhaseRoundEnd
}

// settleIfFinished runs round settlement once no seat remains active:
// stayed and frozen seats that were never banked this round are scored
// now. Returns true when the round settled.
func (r *Room) settleIfFinished(scored map[string]bool) bool {
	if r.anyActive() {
		return false
	}
	for _, uid := range r.PlayerOrder {
		p := r.Players[uid]
		if (p.Status == StatusStayed || p.Status == StatusFrozen) && !scored[uid] && p.RoundScore == 0 {
			r.bankScore(uid, scored)
		}
	}
	r.finishRound()
	return true
}

// advanceTurn moves the turn to the next active seat after the current one.
func (r *Room) advanceTurn() {
	r.CurrentTurnIndex = r.nextActiveSeat(r.CurrentTurnIndex)
}

// canAct gates the turn-holder transitions: correct phase, correct seat,
// eligible status.
func (r *Room) canAct(uid string) bool {
	if r.Phase != PhasePlayerTurn {
		return false
	}
	if r.TurnHolder() != uid {
		return false
	}
	return r.Players[uid].Status == StatusActive
}

// Hit draws one card for the turn holder. Returns false when the caller
// is not entitled to act on this snapshot.
func (r *Room) Hit(uid string) bool {
	if !r.canAct(uid) {
		return false
	}
	scored := make(map[string]bool)
	p := r.Players[uid]

	card, ok := r.drawNext()
	if !ok {
		// Both piles empty: force-stay at the current score.
		rs := r.bankScore(uid, scored)
		p.Status = StatusStayed
		p.HasSecondChance = false
		r.AppendEvent("Deck empty - %s forced to stay with %d pts.", p.Name, rs)
		r.advanceTurn()
		r.settleIfFinished(scored)
		return true
	}

	switch card.Kind {
	case KindNumber:
		if p.HoldsNumber(card.Value) {
			if p.HasSecondChance {
				r.consumeShield(uid, card)
				r.AppendEvent("%s used Second Chance to avoid busting!", p.Name)
			} else {
				r.bust(uid, card)
				r.AppendEvent("%s busted with a duplicate %s!", p.Name, card.Label)
			}
		} else {
			p.NumberCards = append(p.NumberCards, card)
			r.AppendEvent("%s hit and got %s.", p.Name, card.Label)
			if HasFlipSeven(p) {
				r.triggerFlipSeven(uid, scored)
				return true
			}
		}
		r.advanceTurn()
		r.settleIfFinished(scored)

	case KindModifier:
		p.ModifierCards = append(p.ModifierCards, card)
		r.AppendEvent("%s got modifier %s.", p.Name, card.Label)
		r.advanceTurn()

	case KindAction:
		p.ActionCards = append(p.ActionCards, card)
		r.PendingAction = newPendingAction(card, uid)
		r.Phase = PhaseActionResolve
		r.AppendEvent("%s drew %s! Choose a target.", p.Name, card.Label)
	}

	return true
}

// Stay banks the turn holder's current score and ends their round.
func (r *Room) Stay(uid string) bool {
	if !r.canAct(uid) {
		return false
	}
	scored := make(map[string]bool)
	p := r.Players[uid]
	rs := r.bankScore(uid, scored)
	p.Status = StatusStayed
	p.HasSecondChance = false
	r.AppendEvent("%s stayed with %d pts this round.", p.Name, rs)
	r.advanceTurn()
	r.settleIfFinished(scored)
	return true
}

// newPendingAction builds the transient record for a freshly drawn action card.
func newPendingAction(card Card, source string) *PendingAction {
	pa := &PendingAction{
		Action:         card.Action,
		SourcePlayerID: source,
	}
	if card.Action == ActionFlipThree {
		pa.CardsRemaining = 3
	}
	return pa
}
