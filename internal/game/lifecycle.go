package game

// StartGame begins a fresh game from the lobby. Host only.
func (r *Room) StartGame(uid string) bool {
	if uid != r.HostUID || r.Phase != PhaseLobby {
		return false
	}
	r.startFresh()
	return true
}

// RestartGame resets all totals after game over and starts again. Host only.
func (r *Room) RestartGame(uid string) bool {
	if uid != r.HostUID || r.Phase != PhaseGameOver {
		return false
	}
	r.startFresh()
	return true
}

// startFresh rebuilds the deck, zeroes every seat including total
// scores, seats the first player as dealer, and deals round one.
func (r *Room) startFresh() {
	r.Deck = BuildDeck()
	r.Discard = []Card{}
	for i, uid := range r.PlayerOrder {
		p := r.Players[uid]
		p.resetForRound(i == 0)
		p.TotalScore = 0
	}
	r.DealerIndex = 0
	r.CurrentTurnIndex = 0
	r.PendingAction = nil
	r.Round = 1
	r.WinnerUID = ""
	r.Phase = PhaseDealing
	r.AppendEvent("Game started! Dealing cards...")
	r.deal()
}

// StartNextRound collects all held cards into discard, resets every
// seat, advances the dealer one seat, and deals the next round. Host
// only, valid only from round_end.
func (r *Room) StartNextRound(uid string) bool {
	if uid != r.HostUID || r.Phase != PhaseRoundEnd {
		return false
	}
	n := len(r.PlayerOrder)
	newDealer := (r.DealerIndex + 1) % n

	for _, id := range r.PlayerOrder {
		r.Discard = append(r.Discard, r.Players[id].handCards()...)
	}
	for i, id := range r.PlayerOrder {
		r.Players[id].resetForRound(i == newDealer)
	}

	r.DealerIndex = newDealer
	r.CurrentTurnIndex = (newDealer + 1) % n
	r.PendingAction = nil
	r.Round++
	r.Phase = PhaseDealing
	r.AppendEvent("Round %d - %s is dealer.", r.Round, r.Players[r.Seat(newDealer)].Name)
	r.deal()
	return true
}
