package engine

import (
	"cgtminer/internal/boss"
	"cgtminer/internal/breach"
)

// LiveEventKind tags which exclusive event, if any, is running.
type LiveEventKind string

const (
	LiveNone   LiveEventKind = "none"
	LiveBreach LiveEventKind = "breach"
	LiveBoss   LiveEventKind = "boss"
)

// LiveEvent is the at-most-one exclusive event slot. Exactly the field
// matching Kind is set; clearing resets both.
type LiveEvent struct {
	Kind   LiveEventKind
	Breach *breach.Session
	Boss   *boss.Encounter
}

func (l LiveEvent) Active() bool { return l.Kind != LiveNone && l.Kind != "" }

func (l *LiveEvent) Clear() {
	l.Kind = LiveNone
	l.Breach = nil
	l.Boss = nil
}
