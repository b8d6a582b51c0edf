package challenge

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

type arithmeticOp struct {
	symbol string
	apply  func(a, b int) int
}

var arithmeticOps = []arithmeticOp{
	{"+", func(a, b int) int { return a + b }},
	{"-", func(a, b int) int { return a - b }},
	{"×", func(a, b int) int { return a * b }},
	{"÷", func(a, b int) int { return a / b }},
}

// generateQuickMath synthesizes an arithmetic expression. Division is
// built from a product so the quotient is always a whole number, and the
// slower operations get a longer time limit.
func generateQuickMath() Challenge {
	op := arithmeticOps[rand.Intn(len(arithmeticOps))]

	var a, b int
	switch op.symbol {
	case "÷":
		b = rand.Intn(11) + 2
		quotient := rand.Intn(19) + 2
		a = b * quotient
	case "×":
		a, b = rand.Intn(14)+2, rand.Intn(14)+2
	default:
		a, b = rand.Intn(90)+10, rand.Intn(90)+10
	}

	limit := 8 * time.Second
	if op.symbol == "×" || op.symbol == "÷" {
		limit = 12 * time.Second
	}

	return Challenge{
		Type:      TypeQuickMath,
		Question:  fmt.Sprintf("What's %d %s %d?", a, op.symbol, b),
		Answers:   []string{strconv.Itoa(op.apply(a, b))},
		TimeLimit: limit,
	}
}
