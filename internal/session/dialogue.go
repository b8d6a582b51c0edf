package session

import (
	"fmt"
	"math/rand"
)

// Host dialogue keeps the show feeling alive between rounds. Lines are
// picked at random and broadcast as host_line events.
var (
	introLines = []string{
		"Welcome to the show! Let's see what you've got.",
		"Players, take your seats. The game is about to begin!",
		"A fresh party steps up to the stage. Good luck, everyone!",
	}

	roundLines = []string{
		"Next up: %s. Fingers on keyboards!",
		"Here comes a round of %s. No pressure.",
		"Time for some %s. Show me what you know!",
	}

	eliminationLines = []string{
		"This one's for survival. Answer or pack your bags!",
		"Elimination round! Someone's luck runs out here.",
		"The at-risk players face the music. One right answer saves you.",
	}

	eliminatedLines = []string{
		"And that's the end of the road for %s. Give them a hand!",
		"%s, your chair just vanished. Thanks for playing!",
	}

	leaderLines = []string{
		"We have a new front-runner: %s!",
		"%s storms to the top of the board!",
	}

	outroLines = []string{
		"That's the game! Your champion: %s!",
		"Confetti time! %s takes the crown!",
	}
)

func pickLine(lines []string) string {
	return lines[rand.Intn(len(lines))]
}

func pickLinef(lines []string, args ...any) string {
	return fmt.Sprintf(pickLine(lines), args...)
}
