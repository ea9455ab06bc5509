package scheduler

import (
	"fmt"
	"time"
)

// Every runs a job at a fixed interval.
type Every time.Duration

// Next implements Schedule.
func (e Every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

func (e Every) String() string {
	return "@every " + time.Duration(e).String()
}

// Daily runs a job once a day at Hour:Minute in the location of the time
// passed to Next.
type Daily struct {
	Hour   int
	Minute int
}

// ParseDaily reads an "HH:MM" clock time.
func ParseDaily(s string) (Daily, error) {
	at, err := time.Parse("15:04", s)
	if err != nil {
		return Daily{}, fmt.Errorf("daily schedule %q: expected HH:MM", s)
	}
	return Daily{Hour: at.Hour(), Minute: at.Minute()}, nil
}

// Next implements Schedule.
func (d Daily) Next(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), d.Hour, d.Minute, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (d Daily) String() string {
	return fmt.Sprintf("@daily %02d:%02d", d.Hour, d.Minute)
}
