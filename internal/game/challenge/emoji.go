package challenge

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// emojiByLetter maps a letter to emojis whose English names contain it.
// A curated table keeps the generator offline and deterministic in shape.
var emojiByLetter = map[string][]string{
	"a": {"🍎", "🐜", "⚓", "👽", "🚑"},
	"b": {"🐝", "🍌", "🎈", "🦋", "🧠"},
	"c": {"🐱", "🥕", "🏰", "🍒", "🤡"},
	"d": {"🐶", "🎯", "💃", "🐬", "🍩"},
	"e": {"🥚", "🐘", "👁️", "🦅", "✉️"},
	"f": {"🔥", "🐸", "🦊", "🚩", "🍟"},
	"g": {"👻", "🍇", "🎸", "🦒", "🧤"},
	"m": {"🌙", "🐒", "🍄", "🧲", "🎤"},
	"p": {"🍕", "🐧", "🎹", "🥞", "📌"},
	"r": {"🌈", "🤖", "🚀", "🐰", "💍"},
	"s": {"⭐", "🐍", "☀️", "🧦", "🍓"},
	"t": {"🌮", "🐯", "🌳", "🏆", "📞"},
}

var emojiLetters = func() []string {
	letters := make([]string, 0, len(emojiByLetter))
	for l := range emojiByLetter {
		letters = append(letters, l)
	}
	return letters
}()

// generateEmoji asks for a set of emojis in any order.
func generateEmoji() Challenge {
	letter := emojiLetters[rand.Intn(len(emojiLetters))]
	pool := emojiByLetter[letter]

	count := 3
	if len(pool) > 3 && rand.Intn(2) == 0 {
		count = 4
	}
	selected := make([]string, count)
	for i, idx := range rand.Perm(len(pool))[:count] {
		selected[i] = pool[idx]
	}

	question := fmt.Sprintf(
		"Type ALL of the following emojis in ANY order: %s\n(They each contain the letter '%s' in their name)",
		strings.Join(selected, " "), letter,
	)

	return Challenge{
		Type:      TypeEmoji,
		Question:  question,
		Answers:   selected,
		TimeLimit: 25 * time.Second,
		MatchAll:  true,
	}
}
