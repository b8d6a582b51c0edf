package challenge

import (
	"fmt"
	"math/rand"
	"time"
)

var speedTargets = []string{
	"SPEED",
	"SECOND",
	"DASH",
	"ZOOM",
	"FASTER",
	"BLINK",
}

// generateSpeed asks everyone to type the same word; the earliest correct
// submission takes the round.
func generateSpeed() Challenge {
	target := speedTargets[rand.Intn(len(speedTargets))]
	return Challenge{
		Type:       TypeSpeed,
		Question:   fmt.Sprintf("Type: %s", target),
		Answers:    []string{target},
		TimeLimit:  6 * time.Second,
		SpeedBased: true,
	}
}

// generateCollaborative is the cooperative breather round: everyone has to
// answer to pass it.
func generateCollaborative() Challenge {
	return Challenge{
		Type:      TypeCollaborative,
		Question:  "Work together! Everyone must respond with 'ready' to continue!",
		Answers:   []string{"ready"},
		TimeLimit: 30 * time.Second,
	}
}
