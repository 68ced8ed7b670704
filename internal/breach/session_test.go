package breach

import (
	"math/rand"
	"testing"
	"time"

	"cgtminer/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSessionForTest(t *testing.T) *Session {
	t.Helper()
	cfg := config.Default().Events.Breach
	return New(cfg, 1, rand.New(rand.NewSource(7)), sessionStart)
}

// replayTime is a moment safely past the scan phase of the current level.
func replayTime(s *Session) time.Time {
	return s.scanUntil.Add(time.Millisecond)
}

func TestNew_StartsAtLevelOneWithThreeCells(t *testing.T) {
	s := newSessionForTest(t)

	assert.Equal(t, 1, s.Level())
	assert.Len(t, s.Sequence(), 3)
	assert.Equal(t, 0, s.Progress())
	assert.False(t, s.Terminated())
}

func TestNew_DurationMultStretchesWindow(t *testing.T) {
	cfg := config.Default().Events.Breach
	stock := New(cfg, 1, rand.New(rand.NewSource(1)), sessionStart)
	relic := New(cfg, 1.2, rand.New(rand.NewSource(1)), sessionStart)

	assert.Equal(t, sessionStart.Add(20*time.Second), stock.Deadline())
	assert.Equal(t, sessionStart.Add(24*time.Second), relic.Deadline())
}

func TestSubmit_RejectedDuringScan(t *testing.T) {
	s := newSessionForTest(t)

	_, err := s.Submit(s.Sequence()[0], sessionStart)
	assert.ErrorIs(t, err, ErrScanning)
	assert.Equal(t, 0, s.Progress())
}

func TestSubmit_CorrectSequenceClearsLevel(t *testing.T) {
	s := newSessionForTest(t)
	now := replayTime(s)

	seq := s.Sequence()
	for i, cell := range seq {
		out, err := s.Submit(cell, now)
		require.NoError(t, err)
		assert.Equal(t, i+1, out.Progress)
		assert.Equal(t, i == len(seq)-1, out.LevelCleared)
		assert.False(t, out.Terminated)
	}
}

func TestSubmit_MismatchTerminatesImmediately(t *testing.T) {
	s := newSessionForTest(t)
	now := replayTime(s)

	seq := s.Sequence()
	_, err := s.Submit(seq[0], now)
	require.NoError(t, err)

	wrong := Cell{X: (seq[1].X + 1) % 3, Y: seq[1].Y}
	out, err := s.Submit(wrong, now)
	require.NoError(t, err)
	assert.True(t, out.Terminated)
	assert.Equal(t, 1, out.Progress)

	_, err = s.Submit(seq[2], now)
	assert.ErrorIs(t, err, ErrTerminated)
}

func TestSubmit_ExpiredSession(t *testing.T) {
	s := newSessionForTest(t)

	_, err := s.Submit(s.Sequence()[0], s.Deadline().Add(time.Second))
	assert.ErrorIs(t, err, ErrExpired)
}

func TestAdvanceLevel_GrowsSequence(t *testing.T) {
	s := newSessionForTest(t)

	require.Len(t, s.Sequence(), 3)
	s.AdvanceLevel(sessionStart)
	assert.Equal(t, 2, s.Level())
	assert.Len(t, s.Sequence(), 4)
	assert.Equal(t, 0, s.Progress())

	s.AdvanceLevel(sessionStart)
	assert.Len(t, s.Sequence(), 5)
}

func TestAdvanceLevel_ReentersScanPhase(t *testing.T) {
	s := newSessionForTest(t)
	now := replayTime(s)
	require.True(t, s.Replaying(now))

	s.AdvanceLevel(now)
	assert.False(t, s.Replaying(now))
	_, err := s.Submit(s.Sequence()[0], now)
	assert.ErrorIs(t, err, ErrScanning)
}

func TestLevelReward_ScalesWithSequenceLength(t *testing.T) {
	s := newSessionForTest(t)

	// manualPower 4 x 50 per cell x 3 cells
	assert.Equal(t, float64(600), s.LevelReward(4))

	s.AdvanceLevel(sessionStart)
	assert.Equal(t, float64(800), s.LevelReward(4))
}

func TestSequence_ReturnsCopy(t *testing.T) {
	s := newSessionForTest(t)

	seq := s.Sequence()
	seq[0] = Cell{X: 99, Y: 99}
	assert.NotEqual(t, Cell{X: 99, Y: 99}, s.Sequence()[0])
}

func TestSequence_CellsWithinGrid(t *testing.T) {
	s := newSessionForTest(t)
	for i := 0; i < 10; i++ {
		for _, c := range s.Sequence() {
			assert.GreaterOrEqual(t, c.X, 0)
			assert.Less(t, c.X, 3)
			assert.GreaterOrEqual(t, c.Y, 0)
			assert.Less(t, c.Y, 3)
		}
		s.AdvanceLevel(sessionStart)
	}
}
