package model

import "time"

// GeneratedText is a passage with its rendered HTML.
type GeneratedText struct {
	Text        string
	WordsUsed   []string
	HTML        string
	Highlighted []string
}

// AudioArtifact is a narrated passage. Absent for C2.
type AudioArtifact struct {
	Data         []byte
	Format       string
	SpeedPercent int
	Voice        string
}

type GenerationStatus string

const (
	GenerationSucceeded GenerationStatus = "succeeded"
	GenerationFailed    GenerationStatus = "failed"
	GenerationCancelled GenerationStatus = "cancelled"
)

// GenerationRecord is one generation attempt, kept for statistics.
type GenerationRecord struct {
	ID        string
	ChatID    int64
	Level     Level
	Language  string
	Topic     string
	VocabSize int
	WordsUsed int
	Provider  string
	HasAudio  bool
	Status    GenerationStatus
	Error     string
	Latency   time.Duration
	CreatedAt time.Time
}

// GenerationStats aggregates records for the admin API.
type GenerationStats struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	WithAudio int           `json:"with_audio"`
	ByLevel   map[Level]int `json:"by_level"`
}
