package trivia

import (
	"math/rand"
	"sync"
)

// QA is one question with its accepted answers.
type QA struct {
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
}

// Pool is a concurrency-safe bank of questions the challenge generator
// draws from. Picking never blocks on the network; a worker refreshes
// the contents in the background.
type Pool struct {
	mu    sync.RWMutex
	items []QA
}

// NewPool seeds a pool. An empty seed falls back to the built-in set so
// Pick always has something to return.
func NewPool(seed []QA) *Pool {
	if len(seed) == 0 {
		seed = DefaultQuestions
	}
	return &Pool{items: append([]QA(nil), seed...)}
}

// Pick returns a random question from the pool.
func (p *Pool) Pick() (string, []string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	qa := p.items[rand.Intn(len(p.items))]
	return qa.Question, qa.Answers
}

// Replace swaps in fresh content; empty input is ignored.
func (p *Pool) Replace(items []QA) {
	if len(items) == 0 {
		return
	}
	p.mu.Lock()
	p.items = append([]QA(nil), items...)
	p.mu.Unlock()
}

// Len reports the pool size.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

// DefaultQuestions keeps trivia rounds playable with no network at all.
var DefaultQuestions = []QA{
	{"What is the capital of France?", []string{"Paris"}},
	{"What planet is known as the Red Planet?", []string{"Mars"}},
	{"How many continents are there?", []string{"7", "seven"}},
	{"What is the largest mammal?", []string{"blue whale", "the blue whale"}},
	{"What is the chemical symbol for gold?", []string{"Au"}},
	{"In what year did World War II end?", []string{"1945"}},
	{"Which country is home to the kangaroo?", []string{"Australia"}},
	{"What is the smallest prime number?", []string{"2", "two"}},
	{"How many strings does a standard guitar have?", []string{"6", "six"}},
	{"What ocean lies between Africa and Australia?", []string{"Indian", "Indian Ocean"}},
}
