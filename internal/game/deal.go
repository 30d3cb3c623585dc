package game

// deal runs the initial one-card-per-seat pass at the start of a round.
// It starts one seat after the dealer and applies normal hit semantics
// to each card. An action card halts the deal immediately: the room
// enters action_resolve with the interrupted seat as the current turn,
// and the deal is never resumed - play proceeds in normal turn order
// from that seat once the action resolves.
func (r *Room) deal() {
	n := len(r.PlayerOrder)
	for i := 0; i < n; i++ {
		seat := (r.DealerIndex + 1 + i) % n
		uid := r.Seat(seat)
		p := r.Players[uid]
		if p.Status != StatusActive {
			continue
		}

		card, ok := r.drawNext()
		if !ok {
			// Both piles exhausted: stop dealing, remaining seats
			// enter the round empty-handed.
			break
		}

		switch card.Kind {
		case KindNumber:
			if p.HoldsNumber(card.Value) {
				if p.HasSecondChance {
					r.consumeShield(uid, card)
					r.AppendEvent("%s used Second Chance on the deal!", p.Name)
				} else {
					r.bust(uid, card)
					r.AppendEvent("%s busted on the deal with a %s!", p.Name, card.Label)
				}
			} else {
				p.NumberCards = append(p.NumberCards, card)
				r.AppendEvent("%s received %s.", p.Name, card.Label)
			}

		case KindModifier:
			p.ModifierCards = append(p.ModifierCards, card)
			r.AppendEvent("%s received modifier %s.", p.Name, card.Label)

		case KindAction:
			p.ActionCards = append(p.ActionCards, card)
			r.PendingAction = newPendingAction(card, uid)
			r.CurrentTurnIndex = seat
			r.Phase = PhaseActionResolve
			r.AppendEvent("Action card %s dealt to %s! Choose a target.", card.Label, p.Name)
			return
		}
	}

	r.CurrentTurnIndex = r.firstActiveSeatAt((r.DealerIndex + 1) % n)
	r.Phase = PhasePlayerTurn
	r.AppendEvent("Cards dealt! Player turns begin.")
}
