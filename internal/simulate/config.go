// Package simulate runs tournaments offline against synthetic participants.
package simulate

import "time"

// Config holds configuration for a simulation.
type Config struct {
	Participants int           // Number of synthetic participants
	Cycles       int           // Number of cycles to play
	Seed         int64         // Seeds participant generation, play and the optimizer
	Guild        string        // Guild id used for the tournament
	Workers      int           // Optimizer workers
	MaxEpochs    int           // Optimizer epoch cap
	SearchBudget time.Duration // Optimizer wall-time cap; 0 disables it
	Neighbors    int           // Moves sampled per epoch
	Top          int           // Standings rows printed
	Verbose      bool          // Log every action
}

// Stats holds simulation statistics.
type Stats struct {
	Participants  int
	Cycles        int
	MatchesPlayed int
	Volunteers    int
	MeanFitness   float64
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
