package game

// ResolveAction resolves the pending action card against a target. Only
// the player who drew the card may resolve it. Whatever branch runs, the
// action card moves from the source hand to discard and the pending
// action is cleared.
func (r *Room) ResolveAction(uid, targetUID string) bool {
	if r.Phase != PhaseActionResolve || r.PendingAction == nil {
		return false
	}
	pa := r.PendingAction
	if pa.SourcePlayerID != uid {
		return false
	}

	scored := make(map[string]bool)
	r.Phase = PhasePlayerTurn
	target := r.Players[targetUID]

	switch pa.Action {
	case ActionFreeze:
		if target != nil && target.Status == StatusActive {
			rs := r.bankScore(targetUID, scored)
			target.Status = StatusFrozen
			target.HasSecondChance = false
			r.AppendEvent("%s was frozen - banks %d pts.", target.Name, rs)
		} else {
			r.AppendEvent("Freeze card discarded - target is no longer active.")
		}

	case ActionSecondChance:
		switch {
		case target != nil && target.Status == StatusActive && !target.HasSecondChance:
			target.HasSecondChance = true
			r.AppendEvent("%s received a Second Chance card.", target.Name)
		case target != nil && target.HasSecondChance:
			r.AppendEvent("Second Chance discarded - %s already has one.", target.Name)
		default:
			r.AppendEvent("Second Chance discarded - target is no longer active.")
		}

	case ActionFlipThree:
		if target == nil || target.Status != StatusActive {
			r.AppendEvent("Flip Three discarded - target is no longer active.")
		} else {
			r.flipThree(targetUID, pa, scored)
		}
	}

	// The flip-seven branch inside flipThree settles the round itself;
	// otherwise settle now if nobody is left active, or hand the turn to
	// the next seat after the position the action was drawn at.
	if r.Phase == PhasePlayerTurn && !r.settleIfFinished(scored) {
		r.advanceTurn()
	}

	source := r.Players[uid]
	for i, c := range source.ActionCards {
		if c.Action == pa.Action {
			r.Discard = append(r.Discard, c)
			source.ActionCards = append(source.ActionCards[:i], source.ActionCards[i+1:]...)
			break
		}
	}
	r.PendingAction = nil
	return true
}

// flipThree draws up to the remaining count of cards for the target,
// applying normal hit semantics after each draw. The loop stops early on
// bust, on the seven-distinct bonus, or when both piles are exhausted. A
// second-chance action card drawn mid-sequence grants the shield
// directly; other action cards drawn here are discarded without effect.
func (r *Room) flipThree(targetUID string, pa *PendingAction, scored map[string]bool) {
	t := r.Players[targetUID]
	remaining := pa.CardsRemaining
	if remaining <= 0 {
		remaining = 3
	}

	for remaining > 0 && t.Status == StatusActive {
		card, ok := r.drawNext()
		if !ok {
			break
		}
		remaining--

		switch card.Kind {
		case KindNumber:
			if t.HoldsNumber(card.Value) {
				if t.HasSecondChance {
					r.consumeShield(targetUID, card)
					r.AppendEvent("%s used Second Chance during Flip Three!", t.Name)
				} else {
					r.bust(targetUID, card)
					r.AppendEvent("%s busted during Flip Three!", t.Name)
					remaining = 0
				}
			} else {
				t.NumberCards = append(t.NumberCards, card)
				r.AppendEvent("%s flipped %s (Flip Three).", t.Name, card.Label)
				if HasFlipSeven(t) {
					r.triggerFlipSeven(targetUID, scored)
					remaining = 0
				}
			}

		case KindModifier:
			t.ModifierCards = append(t.ModifierCards, card)
			r.AppendEvent("%s got modifier %s (Flip Three).", t.Name, card.Label)

		case KindAction:
			r.Discard = append(r.Discard, card)
			if card.Action == ActionSecondChance {
				t.HasSecondChance = true
				r.AppendEvent("%s got Second Chance during Flip Three!", t.Name)
			} else {
				r.AppendEvent("%s discarded during Flip Three.", card.Label)
			}
		}
	}
}
