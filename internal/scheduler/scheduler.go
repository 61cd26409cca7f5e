// Package scheduler runs qubot's twice-daily report generation:
// 08:00 and 20:00 Asia/Shanghai, one compression+report cycle per
// channel with inter-channel jitter and per-channel error isolation.
package scheduler

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/adhocore/gronx"
)

const (
	cronMorning = "0 8 * * *"
	cronEvening = "0 20 * * *"
	// pollInterval is how often the scheduler checks whether a cron
	// expression is due. gronx.IsDue is minute-resolution; polling twice
	// a minute keeps a due minute from being missed, and lastFired keeps
	// it from firing twice.
	pollInterval = 30 * time.Second
)

var shanghai = mustLoadLocation("Asia/Shanghai")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ChannelReporter generates and sends the report for one channel; it
// returns an error that the scheduler isolates to that channel alone.
type ChannelReporter interface {
	// Channels returns the IDs of every channel with cached messages
	// as of the current wake.
	Channels(ctx context.Context) ([]string, error)
	// RunReport runs the report cycle for one channel. The scheduler
	// does not look at the channel's category itself.
	RunReport(ctx context.Context, channelID string) error
}

// Scheduler drives ChannelReporter at the 08:00/20:00 Shanghai cadence.
type Scheduler struct {
	reporter ChannelReporter
	g        gronx.Gronx
	now      func() time.Time
	sleep    func(time.Duration)
	jitter   func() time.Duration

	lastFired time.Time // minute-truncated timestamp of the last wake, dedups within a minute
}

// New constructs a Scheduler over reporter.
func New(reporter ChannelReporter) *Scheduler {
	return &Scheduler{
		reporter: reporter,
		g:        gronx.New(),
		now:      func() time.Time { return time.Now().In(shanghai) },
		sleep:    time.Sleep,
		jitter: func() time.Duration {
			return time.Duration(60+rand.Intn(121)) * time.Second
		},
	}
}

// Run blocks, waking at every 08:00/20:00 Shanghai boundary until ctx
// is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()
	minute := now.Truncate(time.Minute)
	if minute.Equal(s.lastFired) {
		return
	}

	dueMorning, _ := s.g.IsDue(cronMorning, now)
	dueEvening, _ := s.g.IsDue(cronEvening, now)
	if !dueMorning && !dueEvening {
		return
	}

	s.lastFired = minute
	s.generateAllReports(ctx)
}

// generateAllReports runs one report cycle across every channel with
// cached messages, isolating failures per channel and jittering
// 60-180s between channels (the first channel is not jittered).
func (s *Scheduler) generateAllReports(ctx context.Context) {
	channels, err := s.reporter.Channels(ctx)
	if err != nil {
		slog.Error("scheduler: failed listing channels", slog.Any("err", err))
		return
	}

	for i, channelID := range channels {
		if i > 0 {
			s.sleep(s.jitter())
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("scheduler: panic generating report", slog.String("channel", channelID), slog.Any("panic", r))
				}
			}()
			if err := s.reporter.RunReport(ctx, channelID); err != nil {
				slog.Error("scheduler: report failed", slog.String("channel", channelID), slog.Any("err", err))
			}
		}()
	}
}
