package engine

import (
	"reflect"
	"testing"

	"flashdeck/internal/models"
)

func answerCard(answer string) models.Card {
	return models.Card{Answer: &answer}
}

func TestIsCorrectAnswer(t *testing.T) {
	tests := []struct {
		name          string
		answer        string
		userAnswer    string
		caseSensitive bool
		expected      bool
	}{
		{
			name:       "case insensitive match",
			answer:     "Paris",
			userAnswer: "paris",
			expected:   true,
		},
		{
			name:          "case sensitive mismatch",
			answer:        "Paris",
			userAnswer:    "paris",
			caseSensitive: true,
			expected:      false,
		},
		{
			name:          "case sensitive exact match",
			answer:        "Paris",
			userAnswer:    "Paris",
			caseSensitive: true,
			expected:      true,
		},
		{
			name:       "second alternative matches",
			answer:     "cat|dog",
			userAnswer: "dog",
			expected:   true,
		},
		{
			name:       "no alternative matches",
			answer:     "cat|dog",
			userAnswer: "fish",
			expected:   false,
		},
		{
			name:       "markup stripped from authored answer",
			answer:     "<p>Paris</p>",
			userAnswer: "paris",
			expected:   true,
		},
		{
			name:       "entities decoded after stripping",
			answer:     "salt &amp; pepper",
			userAnswer: "salt & pepper",
			expected:   true,
		},
		{
			name:       "escaped pipe compared literally",
			answer:     `hund\|katt`,
			userAnswer: "hund|katt",
			expected:   true,
		},
		{
			name:       "empty alternative matches empty input",
			answer:     "cat|",
			userAnswer: "",
			expected:   true,
		},
		{
			name:       "empty input does not match non-empty alternatives",
			answer:     "cat|dog",
			userAnswer: "",
			expected:   false,
		},
		{
			name:       "input is not trimmed here",
			answer:     "cat",
			userAnswer: " cat",
			expected:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsCorrectAnswer(answerCard(tt.answer), tt.userAnswer, tt.caseSensitive)
			if result != tt.expected {
				t.Errorf("IsCorrectAnswer(%q, %q, %v) = %v, want %v",
					tt.answer, tt.userAnswer, tt.caseSensitive, result, tt.expected)
			}
		})
	}
}

func TestIsCorrectAnswerDisplayOnlyCard(t *testing.T) {
	if IsCorrectAnswer(models.Card{Text: "just a picture"}, "", false) {
		t.Error("display-only card should never match")
	}
}

func TestAlternatives(t *testing.T) {
	result := Alternatives(answerCard("cat|dog"))
	expected := []string{"cat", "dog"}
	if !reflect.DeepEqual(result, expected) {
		t.Errorf("Alternatives() = %v, want %v", result, expected)
	}

	if Alternatives(models.Card{}) != nil {
		t.Error("Alternatives() for display-only card should be nil")
	}
}
