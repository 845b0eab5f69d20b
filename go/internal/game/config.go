package game

import "time"

// Config holds the game tunables. Zero or negative values are replaced by defaults in NewApp.
type Config struct {
	TurnDuration time.Duration `yaml:"turn_duration"`
	GuessDelay   time.Duration `yaml:"guess_delay"`
	SolveDelay   time.Duration `yaml:"solve_delay"`
	InitialScore int           `yaml:"initial_score"`
	MaxCapacity  int           `yaml:"max_capacity"`
	MaxWordCount int           `yaml:"max_word_count"`
}

// DefaultConfig returns the production tunables.
func DefaultConfig() Config {
	return Config{
		TurnDuration: 10 * time.Second,
		GuessDelay:   time.Second,
		SolveDelay:   2 * time.Second,
		InitialScore: 10,
		MaxCapacity:  20,
		MaxWordCount: 50,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TurnDuration <= 0 {
		c.TurnDuration = d.TurnDuration
	}
	if c.GuessDelay <= 0 {
		c.GuessDelay = d.GuessDelay
	}
	if c.SolveDelay <= 0 {
		c.SolveDelay = d.SolveDelay
	}
	if c.InitialScore <= 0 {
		c.InitialScore = d.InitialScore
	}
	if c.MaxCapacity <= 0 {
		c.MaxCapacity = d.MaxCapacity
	}
	if c.MaxWordCount <= 0 {
		c.MaxWordCount = d.MaxWordCount
	}
	return c
}
