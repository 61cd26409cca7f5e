package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adhocore/gronx"
)

type fakeReporter struct {
	channels    []string
	channelsErr error
	reportErr   map[string]error
	ran         []string
	panicOn     string
}

func (f *fakeReporter) Channels(ctx context.Context) ([]string, error) {
	return f.channels, f.channelsErr
}

func (f *fakeReporter) RunReport(ctx context.Context, channelID string) error {
	f.ran = append(f.ran, channelID)
	if channelID == f.panicOn {
		panic("boom")
	}
	if f.reportErr != nil {
		if err, ok := f.reportErr[channelID]; ok {
			return err
		}
	}
	return nil
}

func newTestScheduler(reporter *fakeReporter, now time.Time) *Scheduler {
	return &Scheduler{
		reporter: reporter,
		g:        gronx.New(),
		now:      func() time.Time { return now },
		sleep:    func(time.Duration) {},
		jitter:   func() time.Duration { return 0 },
	}
}

func TestTick_NotDueDoesNothing(t *testing.T) {
	reporter := &fakeReporter{channels: []string{"chan1"}}
	// 08:05 Shanghai: not due (cron is minute-exact at 08:00).
	now := time.Date(2026, 7, 30, 8, 5, 0, 0, shanghai)
	s := newTestScheduler(reporter, now)

	s.tick(context.Background())

	if len(reporter.ran) != 0 {
		t.Errorf("expected no reports to run when not due, got %v", reporter.ran)
	}
}

func TestTick_MorningCronFiresReports(t *testing.T) {
	reporter := &fakeReporter{channels: []string{"chan1", "chan2"}}
	now := time.Date(2026, 7, 30, 8, 0, 0, 0, shanghai)
	s := newTestScheduler(reporter, now)

	s.tick(context.Background())

	if len(reporter.ran) != 2 {
		t.Fatalf("expected both channels to run, got %v", reporter.ran)
	}
}

func TestTick_EveningCronFiresReports(t *testing.T) {
	reporter := &fakeReporter{channels: []string{"chan1"}}
	now := time.Date(2026, 7, 30, 20, 0, 0, 0, shanghai)
	s := newTestScheduler(reporter, now)

	s.tick(context.Background())

	if len(reporter.ran) != 1 {
		t.Fatalf("expected the channel to run, got %v", reporter.ran)
	}
}

func TestTick_DedupsWithinSameMinute(t *testing.T) {
	reporter := &fakeReporter{channels: []string{"chan1"}}
	now := time.Date(2026, 7, 30, 8, 0, 0, 0, shanghai)
	s := newTestScheduler(reporter, now)

	s.tick(context.Background())
	s.tick(context.Background())

	if len(reporter.ran) != 1 {
		t.Errorf("expected a second tick in the same minute to be a no-op, got %d runs", len(reporter.ran))
	}
}

func TestTick_FiresAgainNextDueMinute(t *testing.T) {
	reporter := &fakeReporter{channels: []string{"chan1"}}
	s := newTestScheduler(reporter, time.Date(2026, 7, 30, 8, 0, 0, 0, shanghai))

	s.tick(context.Background())
	s.now = func() time.Time { return time.Date(2026, 7, 30, 20, 0, 0, 0, shanghai) }
	s.tick(context.Background())

	if len(reporter.ran) != 2 {
		t.Errorf("expected the evening cron to fire a second round, got %d runs", len(reporter.ran))
	}
}

func TestGenerateAllReports_IsolatesPerChannelError(t *testing.T) {
	reporter := &fakeReporter{
		channels:  []string{"chan1", "chan2", "chan3"},
		reportErr: map[string]error{"chan2": errors.New("boom")},
	}
	s := newTestScheduler(reporter, time.Now())

	s.generateAllReports(context.Background())

	if len(reporter.ran) != 3 {
		t.Errorf("expected all channels to be attempted despite chan2's error, got %v", reporter.ran)
	}
}

func TestGenerateAllReports_RecoversFromPanic(t *testing.T) {
	reporter := &fakeReporter{
		channels: []string{"chan1", "chan2"},
		panicOn:  "chan1",
	}
	s := newTestScheduler(reporter, time.Now())

	s.generateAllReports(context.Background())

	if len(reporter.ran) != 2 {
		t.Errorf("expected chan2 to still run after chan1 panics, got %v", reporter.ran)
	}
}

func TestGenerateAllReports_ChannelsErrorStopsEarly(t *testing.T) {
	reporter := &fakeReporter{channelsErr: errors.New("db down")}
	s := newTestScheduler(reporter, time.Now())

	s.generateAllReports(context.Background())

	if len(reporter.ran) != 0 {
		t.Errorf("expected no reports when Channels() errors, got %v", reporter.ran)
	}
}

func TestGenerateAllReports_JittersBetweenChannelsNotBeforeFirst(t *testing.T) {
	reporter := &fakeReporter{channels: []string{"chan1", "chan2", "chan3"}}
	sleeps := 0
	s := newTestScheduler(reporter, time.Now())
	s.sleep = func(time.Duration) { sleeps++ }

	s.generateAllReports(context.Background())

	if sleeps != 2 {
		t.Errorf("expected sleep to be called once between each pair of channels (2 for 3 channels), got %d", sleeps)
	}
}
