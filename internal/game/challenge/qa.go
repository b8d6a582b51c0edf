package challenge

import (
	"math/rand"
	"time"
)

const (
	triviaTimeLimit = 20 * time.Second
	riddleTimeLimit = 30 * time.Second
)

// qaGenerator adapts a QASource into a generator for question/answer
// style rounds.
func qaGenerator(t GameType, source QASource, limit time.Duration, freeText bool) GeneratorFunc {
	return func() Challenge {
		question, answers := source.Pick()
		return Challenge{
			Type:      t,
			Question:  question,
			Answers:   answers,
			TimeLimit: limit,
			FreeText:  freeText,
		}
	}
}

type staticQA struct {
	Question string
	Answers  []string
}

type staticSource []staticQA

func (s staticSource) Pick() (string, []string) {
	qa := s[rand.Intn(len(s))]
	return qa.Question, qa.Answers
}

// Built-in pools keep the generators usable when no live source is wired.
var fallbackTrivia = staticSource{
	{"What is the capital of France?", []string{"Paris"}},
	{"How many continents are there?", []string{"7", "seven"}},
	{"What planet is known as the Red Planet?", []string{"Mars"}},
	{"What is the largest ocean on Earth?", []string{"Pacific", "Pacific Ocean"}},
	{"In what year did World War II end?", []string{"1945"}},
	{"What is the chemical symbol for gold?", []string{"Au"}},
	{"Which country invented pizza?", []string{"Italy"}},
	{"How many sides does a hexagon have?", []string{"6", "six"}},
}

var fallbackRiddles = staticSource{
	{
		"What has keys but no locks, space but no room, and you can enter but not go inside?",
		[]string{"a keyboard", "keyboard"},
	},
	{
		"What gets wetter as it dries?",
		[]string{"a towel", "towel"},
	},
	{
		"I speak without a mouth and hear without ears. What am I?",
		[]string{"an echo", "echo"},
	},
	{
		"The more of this there is, the less you see. What is it?",
		[]string{"darkness", "the dark"},
	},
	{
		"What has to be broken before you can use it?",
		[]string{"an egg", "egg"},
	},
}
