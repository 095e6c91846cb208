package model

import (
	"fmt"
	"strings"

	"telegram-vocab-reader/internal/domain"
)

// Level is a CEFR-style proficiency tag.
type Level string

const (
	LevelC2 Level = "C2"
	LevelC1 Level = "C1"
	LevelB2 Level = "B2"
	LevelB1 Level = "B1"
	LevelA2 Level = "A2"
	LevelA1 Level = "A1"
)

// LevelPolicy is what a level implies for generation and narration.
type LevelPolicy struct {
	WordCount    int
	IncludeAudio bool
	SpeedPercent int // 0 when IncludeAudio is false
}

var policies = map[Level]LevelPolicy{
	LevelC2: {WordCount: 500, IncludeAudio: false},
	LevelC1: {WordCount: 400, IncludeAudio: true, SpeedPercent: 100},
	LevelB2: {WordCount: 300, IncludeAudio: true, SpeedPercent: 85},
	LevelB1: {WordCount: 250, IncludeAudio: true, SpeedPercent: 85},
	LevelA2: {WordCount: 150, IncludeAudio: true, SpeedPercent: 70},
	LevelA1: {WordCount: 50, IncludeAudio: true, SpeedPercent: 70},
}

// AllLevels returns levels in keyboard order, hardest first.
func AllLevels() []Level {
	return []Level{LevelC2, LevelC1, LevelB2, LevelB1, LevelA2, LevelA1}
}

// ParseLevel accepts a level token case-insensitively.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := policies[l]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownLevel, s)
	}
	return l, nil
}

func (l Level) Valid() bool {
	_, ok := policies[l]
	return ok
}

// Policy returns the fixed policy of l. Unknown levels yield the zero policy.
func (l Level) Policy() LevelPolicy {
	return policies[l]
}

// SpeakingRate converts the policy speed into the 1.0-based rate TTS engines take.
func (p LevelPolicy) SpeakingRate() float64 {
	if p.SpeedPercent <= 0 {
		return 1.0
	}
	return float64(p.SpeedPercent) / 100
}

func (l Level) String() string { return string(l) }
