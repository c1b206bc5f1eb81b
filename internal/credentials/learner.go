package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Friendly word lists for anonymous learner aliases
var adjectives = []string{
	"happy", "clever", "bright", "swift", "brave",
	"calm", "eager", "gentle", "jolly", "keen",
	"lively", "merry", "noble", "proud", "quick",
	"sunny", "witty", "bold", "kind", "wise",
}

var nouns = []string{
	"falcon", "otter", "badger", "dolphin", "panda",
	"tiger", "rabbit", "turtle", "eagle", "fox",
	"koala", "lemur", "lynx", "owl", "penguin",
	"puffin", "raven", "seal", "wolf", "wombat",
}

// GenerateLearnerAlias produces a memorable identifier for learners who
// start a session without providing one, e.g. "clever-otter-42"
func GenerateLearnerAlias() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", fmt.Errorf("failed to pick adjective: %w", err)
	}

	noun, err := randomElement(nouns)
	if err != nil {
		return "", fmt.Errorf("failed to pick noun: %w", err)
	}

	number, err := randomInt(100)
	if err != nil {
		return "", fmt.Errorf("failed to pick number: %w", err)
	}

	return fmt.Sprintf("%s-%s-%d", adjective, noun, number), nil
}

func randomElement(list []string) (string, error) {
	index, err := randomInt(len(list))
	if err != nil {
		return "", err
	}
	return list[index], nil
}

func randomInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
