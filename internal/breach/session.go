// Package breach runs the pattern-memory intrusion minigame. A session
// shows the player a cell sequence on a small grid, then expects the
// same sequence tapped back. Each cleared level lengthens the pattern;
// one wrong cell ends the session on the spot.
package breach

import (
	"errors"
	"math/rand"
	"time"

	"cgtminer/internal/config"
)

var (
	// ErrScanning means the sequence is still being shown; inputs are
	// not accepted until the replay window opens.
	ErrScanning = errors.New("breach: sequence still scanning")
	// ErrExpired means the session window closed.
	ErrExpired = errors.New("breach: session expired")
	// ErrTerminated means a previous wrong input already ended the session.
	ErrTerminated = errors.New("breach: session terminated")
)

// Scan pacing: a short lead-in, then one beat per cell.
const (
	scanLeadIn  = 500 * time.Millisecond
	scanPerCell = 600 * time.Millisecond
)

// Cell addresses one pad on the breach grid.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Outcome reports what a single input did to the session.
type Outcome struct {
	Progress     int  `json:"progress"`
	SequenceLen  int  `json:"sequence_len"`
	LevelCleared bool `json:"level_cleared"`
	Terminated   bool `json:"terminated"`
}

// Session is one live breach. Not safe for concurrent use; the engine
// serializes access.
type Session struct {
	cfg      config.BreachConfig
	rng      *rand.Rand
	deadline time.Time

	level      int
	sequence   []Cell
	progress   int
	scanUntil  time.Time
	terminated bool
}

// New opens a session. durationMult stretches the window for relic
// holders; pass 1 for the stock duration.
func New(cfg config.BreachConfig, durationMult float64, rng *rand.Rand, now time.Time) *Session {
	if durationMult <= 0 {
		durationMult = 1
	}
	s := &Session{
		cfg:      cfg,
		rng:      rng,
		deadline: now.Add(time.Duration(float64(cfg.Duration()) * durationMult)),
	}
	s.nextLevel(now)
	return s
}

// nextLevel rolls a fresh sequence, slightly longer than the last one,
// and starts the scan phase.
func (s *Session) nextLevel(now time.Time) {
	length := 3 + len(s.sequence)/2
	seq := make([]Cell, length)
	for i := range seq {
		seq[i] = Cell{X: s.rng.Intn(s.cfg.GridSize), Y: s.rng.Intn(s.cfg.GridSize)}
	}
	s.level++
	s.sequence = seq
	s.progress = 0
	s.scanUntil = now.Add(scanLeadIn + time.Duration(length)*scanPerCell)
}

// AdvanceLevel moves to the next, longer pattern. Called by the engine
// after it has paid out the cleared level.
func (s *Session) AdvanceLevel(now time.Time) {
	s.nextLevel(now)
}

func (s *Session) Level() int          { return s.level }
func (s *Session) Progress() int       { return s.progress }
func (s *Session) Deadline() time.Time { return s.deadline }
func (s *Session) Terminated() bool    { return s.terminated }
func (s *Session) Multiplier() float64 { return s.cfg.Multiplier }

// Sequence returns a copy of the current pattern for display during
// the scan phase.
func (s *Session) Sequence() []Cell {
	return append([]Cell{}, s.sequence...)
}

func (s *Session) Replaying(now time.Time) bool {
	return now.After(s.scanUntil)
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.deadline)
}

// LevelReward is the payout for clearing the current pattern.
func (s *Session) LevelReward(manualPower float64) float64 {
	return manualPower * s.cfg.RewardPerCell * float64(len(s.sequence))
}

// Submit checks one tapped cell against the pattern. A wrong cell
// terminates the session immediately; the caller gets no second try.
func (s *Session) Submit(cell Cell, now time.Time) (Outcome, error) {
	if s.terminated {
		return Outcome{}, ErrTerminated
	}
	if s.Expired(now) {
		return Outcome{}, ErrExpired
	}
	if !s.Replaying(now) {
		return Outcome{}, ErrScanning
	}

	if s.sequence[s.progress] != cell {
		s.terminated = true
		return Outcome{
			Progress:    s.progress,
			SequenceLen: len(s.sequence),
			Terminated:  true,
		}, nil
	}

	s.progress++
	return Outcome{
		Progress:     s.progress,
		SequenceLen:  len(s.sequence),
		LevelCleared: s.progress == len(s.sequence),
	}, nil
}
