package challenge

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"
)

var textModWords = []string{
	"voyager",
	"gameshow",
	"channel",
	"keyboard",
	"lightning",
	"challenge",
	"elimination",
}

// generateTextMod asks players to transform a word: reversed, or with
// alternating upper/lower case starting upper.
func generateTextMod() Challenge {
	word := textModWords[rand.Intn(len(textModWords))]

	if rand.Intn(2) == 0 {
		return Challenge{
			Type:      TypeTextMod,
			Question:  fmt.Sprintf("Type '%s' backwards", word),
			Answers:   []string{reverseString(word)},
			TimeLimit: 15 * time.Second,
		}
	}

	return Challenge{
		Type:          TypeTextMod,
		Question:      fmt.Sprintf("Type '%s' with alternating UPPER/lower case (start with UPPER)", word),
		Answers:       []string{alternateCase(word)},
		TimeLimit:     15 * time.Second,
		CaseSensitive: true,
	}
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func alternateCase(s string) string {
	var b strings.Builder
	for i, r := range []rune(s) {
		if i%2 == 0 {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
