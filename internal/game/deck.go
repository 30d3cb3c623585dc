package game

import "math/rand/v2"

// Number card counts: value v appears max(v, 1) times for v = 0..12.
// Low numbers are rare and high numbers common, which raises the bust
// risk as a round progresses.
func makeNumberCards() []Card {
	cards := make([]Card, 0, 79)
	for v := 0; v <= 12; v++ {
		count := v
		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			cards = append(cards, NewNumberCard(v))
		}
	}
	return cards
}

func makeModifierCards() []Card {
	cards := make([]Card, 0, 6)
	for _, v := range []int{2, 4, 6, 8, 10} {
		cards = append(cards, NewModifierCard(v))
	}
	cards = append(cards, NewDoubleCard())
	return cards
}

func makeActionCards() []Card {
	cards := make([]Card, 0, 9)
	for _, action := range []ActionKind{ActionFreeze, ActionFlipThree, ActionSecondChance} {
		for i := 0; i < 3; i++ {
			cards = append(cards, NewActionCard(action))
		}
	}
	return cards
}

// BuildDeck constructs the full 94-card multiset and returns it shuffled.
func BuildDeck() []Card {
	deck := makeNumberCards()
	deck = append(deck, makeModifierCards()...)
	deck = append(deck, makeActionCards()...)
	return Shuffle(deck)
}

// Shuffle returns a uniformly random permutation of cards using the
// back-to-front Fisher-Yates swap. The input slice is not modified.
func Shuffle(cards []Card) []Card {
	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}
