package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "i m calling about your car s extended warranty", normalizeText("I'm calling about your car's extended warranty!"))
	assert.Equal(t, "1 800 441 9593", normalizeText("+1 (800) 441-9593"))
	assert.Equal(t, "", normalizeText(" ... "))
}

func TestInformativeWords(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{text: "uh", want: 0},
		{text: "what?", want: 0},
		{text: "hello, who is this", want: 0},
		{text: "I need help", want: 2},
		{text: "Hi, this is Dr. Smith's office calling to confirm your appointment", want: 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, informativeWords(tt.text), tt.text)
	}
}

func TestContainsTerm(t *testing.T) {
	assert.True(t, containsTerm("press 1 now", "press 1"))
	assert.False(t, containsTerm("pressing 1", "press 1"))
	assert.False(t, containsTerm("anything", ""))
}
