package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

// scriptedFetcher replays a fixed sequence of poll results.
type scriptedFetcher struct {
	results []fetchResult
	calls   int
}

type fetchResult struct {
	notification *Notification
	err          error
}

func (f *scriptedFetcher) LatestNotification(ctx context.Context) (*Notification, error) {
	if f.calls >= len(f.results) {
		last := f.results[len(f.results)-1]
		return last.notification, last.err
	}
	result := f.results[f.calls]
	f.calls++
	return result.notification, result.err
}

type recordingPresenter struct {
	presented []Notification
}

func (p *recordingPresenter) Present(n Notification) {
	p.presented = append(p.presented, n)
}

func notif(id uint) *Notification {
	return &Notification{ID: id, Title: "Site Down", Message: "example.com is down", Type: "site_down"}
}

func TestBaselineSuppression(t *testing.T) {
	fetcher := &scriptedFetcher{results: []fetchResult{
		{notification: notif(42)},
	}}
	presenter := &recordingPresenter{}
	w := New(fetcher, presenter, zap.NewNop())

	w.Tick(context.Background())

	if len(presenter.presented) != 0 {
		t.Fatalf("Expected no alerts on baseline tick, got %d", len(presenter.presented))
	}
	if !w.initialized {
		t.Error("Expected watcher to be initialized after first successful tick")
	}
	if w.lastSeenID != 42 {
		t.Errorf("Expected watermark 42, got %d", w.lastSeenID)
	}
}

func TestMonotonicDedupe(t *testing.T) {
	// Poll results 5, 5, 7, 7, 9 after the baseline must alert exactly
	// twice: once for 7, once for 9.
	fetcher := &scriptedFetcher{results: []fetchResult{
		{notification: notif(5)}, // baseline
		{notification: notif(5)},
		{notification: notif(5)},
		{notification: notif(7)},
		{notification: notif(7)},
		{notification: notif(9)},
	}}
	presenter := &recordingPresenter{}
	w := New(fetcher, presenter, zap.NewNop())

	for range fetcher.results {
		w.Tick(context.Background())
	}

	if len(presenter.presented) != 2 {
		t.Fatalf("Expected exactly 2 alerts, got %d", len(presenter.presented))
	}
	if presenter.presented[0].ID != 7 || presenter.presented[1].ID != 9 {
		t.Errorf("Expected alerts for ids [7 9], got [%d %d]",
			presenter.presented[0].ID, presenter.presented[1].ID)
	}
	if w.lastSeenID != 9 {
		t.Errorf("Expected watermark 9, got %d", w.lastSeenID)
	}
}

func TestEmptyFeedInitializes(t *testing.T) {
	fetcher := &scriptedFetcher{results: []fetchResult{
		{notification: nil},
		{notification: notif(1)},
	}}
	presenter := &recordingPresenter{}
	w := New(fetcher, presenter, zap.NewNop())

	w.Tick(context.Background())

	if !w.initialized {
		t.Fatal("Expected empty feed to initialize the watcher")
	}

	// The first notification to arrive after an empty baseline is new.
	w.Tick(context.Background())

	if len(presenter.presented) != 1 || presenter.presented[0].ID != 1 {
		t.Fatalf("Expected one alert for id 1, got %v", presenter.presented)
	}
}

func TestFetchFailureSkipsTick(t *testing.T) {
	fetcher := &scriptedFetcher{results: []fetchResult{
		{notification: notif(5)}, // baseline
		{err: errors.New("network unreachable")},
		{notification: notif(6)},
	}}
	presenter := &recordingPresenter{}
	w := New(fetcher, presenter, zap.NewNop())

	w.Tick(context.Background())
	w.Tick(context.Background()) // failed tick: no state change, no alert

	if len(presenter.presented) != 0 {
		t.Fatalf("Expected no alert from failed tick, got %d", len(presenter.presented))
	}
	if w.lastSeenID != 5 {
		t.Errorf("Expected watermark unchanged at 5, got %d", w.lastSeenID)
	}

	// Next tick recovers and picks up the new notification.
	w.Tick(context.Background())

	if len(presenter.presented) != 1 || presenter.presented[0].ID != 6 {
		t.Fatalf("Expected recovery alert for id 6, got %v", presenter.presented)
	}
}

func TestFailureBeforeBaselineDoesNotInitialize(t *testing.T) {
	fetcher := &scriptedFetcher{results: []fetchResult{
		{err: errors.New("boom")},
		{notification: notif(3)},
	}}
	presenter := &recordingPresenter{}
	w := New(fetcher, presenter, zap.NewNop())

	w.Tick(context.Background())

	if w.initialized {
		t.Fatal("Failed tick must not initialize the watcher")
	}

	// First successful tick is still the silent baseline.
	w.Tick(context.Background())

	if len(presenter.presented) != 0 {
		t.Fatalf("Expected baseline tick to stay silent, got %d alerts", len(presenter.presented))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	fetcher := &scriptedFetcher{results: []fetchResult{
		{notification: notif(1)},
	}}
	presenter := &recordingPresenter{}
	w := New(fetcher, presenter, zap.NewNop())
	w.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
