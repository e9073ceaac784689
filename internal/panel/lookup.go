package panel

import (
	"errors"
	"fmt"
	"time"

	"weather-panel/internal/weather"
)

type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeNotFound Outcome = "not_found"
	OutcomeError    Outcome = "error"
)

// Lookup describes one completed fetch attempt.
type Lookup struct {
	ID        string
	Place     string
	Unit      weather.Unit
	Outcome   Outcome
	Error     string
	Stale     bool
	Duration  time.Duration
	StartedAt time.Time
}

type NoticeKind string

const (
	NoticeNotFound    NoticeKind = "not_found"
	NoticeUnavailable NoticeKind = "unavailable"
)

// Notice is the user-facing trace of the last failed fetch.
type Notice struct {
	Kind  NoticeKind `json:"kind"`
	Place string     `json:"place"`
}

func (n *Notice) Message() string {
	if n == nil {
		return ""
	}
	if n.Kind == NoticeNotFound {
		return fmt.Sprintf("No results for %q", n.Place)
	}
	return "Weather data is unavailable right now"
}

func noticeFor(err error, place string) *Notice {
	if errors.Is(err, weather.ErrPlaceNotFound) {
		return &Notice{Kind: NoticeNotFound, Place: place}
	}
	return &Notice{Kind: NoticeUnavailable, Place: place}
}
