// Package scheduler runs the daily batch belief rebuild on a cron
// schedule. The web layer's incremental bump is the primary update
// path; the scheduled rebuild is the recovery path that recomputes
// every user from the history snapshot.
package scheduler

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Rebuilder owns the rebuild task and fires it once a day at a
// configured local time.
type Rebuilder struct {
	cron    *cron.Cron
	rebuild func()

	mu      sync.Mutex
	entryID cron.EntryID
}

// New creates a Rebuilder for the given rebuild task in the given
// timezone.
func New(timezone string, rebuild func()) (*Rebuilder, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler: loading timezone %q: %w", timezone, err)
	}

	return &Rebuilder{
		cron:    cron.New(cron.WithLocation(loc)),
		rebuild: rebuild,
	}, nil
}

// Schedule arms the daily rebuild at the given local time (HH:MM),
// replacing any earlier schedule. The task runs with start/duration
// logging around it.
func (r *Rebuilder) Schedule(at string) error {
	hour, minute, err := parseClock(at)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entryID != 0 {
		r.cron.Remove(r.entryID)
	}

	expr := fmt.Sprintf("%d %d * * *", minute, hour)
	entryID, err := r.cron.AddFunc(expr, r.run)
	if err != nil {
		return fmt.Errorf("scheduler: adding cron entry: %w", err)
	}
	r.entryID = entryID

	slog.Info("rebuild scheduled", "at", at, "cron", expr)
	return nil
}

func (r *Rebuilder) run() {
	start := time.Now()
	slog.Info("scheduled rebuild starting")
	r.rebuild()
	slog.Info("scheduled rebuild finished", "duration", time.Since(start).String())
}

// Start begins the cron loop.
func (r *Rebuilder) Start() {
	r.cron.Start()
}

// Stop halts the cron loop.
func (r *Rebuilder) Stop() {
	r.cron.Stop()
}

// parseClock splits an HH:MM string into hour and minute.
func parseClock(s string) (int, int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, 0, fmt.Errorf("scheduler: invalid rebuild time %q: want HH:MM", s)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("scheduler: invalid rebuild time %q: hour must be 00-23", s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("scheduler: invalid rebuild time %q: minute must be 00-59", s)
	}

	return hour, minute, nil
}
