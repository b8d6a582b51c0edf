package challenge

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// generateMemory shows a digit sequence the players have to echo back.
// Both spaced and unspaced forms are accepted; the time limit scales with
// the sequence length.
func generateMemory() Challenge {
	length := rand.Intn(4) + 3
	digits := make([]string, length)
	for i := range digits {
		digits[i] = fmt.Sprint(rand.Intn(9) + 1)
	}

	spaced := strings.Join(digits, " ")
	return Challenge{
		Type:      TypeMemory,
		Question:  fmt.Sprintf("Remember this sequence: %s", spaced),
		Answers:   []string{spaced, strings.Join(digits, "")},
		TimeLimit: time.Duration(length*3+4) * time.Second,
	}
}
