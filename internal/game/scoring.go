package game

// BonusScore is the flat award for collecting seven distinct number values.
const BonusScore = 15

// WinningScore is the banked total at which the game ends.
const WinningScore = 200

// HandScore computes a player's current round score. A busted player
// scores zero. Otherwise the number card values are summed, doubled
// first if the x2 modifier is held, and the additive modifiers are
// added afterwards. The doubling never applies to additive modifiers.
func HandScore(p *PlayerState) int {
	if p.Status == StatusBusted {
		return 0
	}

	numberSum := 0
	for _, c := range p.NumberCards {
		numberSum += c.Value
	}

	hasDouble := false
	addBonus := 0
	for _, c := range p.ModifierCards {
		if c.IsDouble {
			hasDouble = true
		} else {
			addBonus += c.Value
		}
	}

	if hasDouble {
		numberSum *= 2
	}
	return numberSum + addBonus
}

// HasFlipSeven reports whether the player holds at least seven distinct
// number values, regardless of total card count.
func HasFlipSeven(p *PlayerState) bool {
	seen := make(map[int]struct{}, len(p.NumberCards))
	for _, c := range p.NumberCards {
		seen[c.Value] = struct{}{}
	}
	return len(seen) >= 7
}
