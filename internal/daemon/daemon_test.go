package daemon

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"rippa/internal/config"
	"rippa/internal/disc"
	"rippa/internal/logging"
	"rippa/internal/ripping"
)

type fakeRipper struct {
	cleanCalls int32
	ripCalls   int32
	result     ripping.Result
	err        error
}

func (f *fakeRipper) CleanStale() error {
	atomic.AddInt32(&f.cleanCalls, 1)
	return nil
}

func (f *fakeRipper) RipIfNeeded(ctx context.Context) (ripping.Result, error) {
	atomic.AddInt32(&f.ripCalls, 1)
	return f.result, f.err
}

type fakeTranscoder struct {
	calls int32
}

func (f *fakeTranscoder) PollOnce(ctx context.Context) error {
	atomic.AddInt32(&f.calls, 1)
	return nil
}

type fakeDrainer struct {
	calls int32
}

func (f *fakeDrainer) Drain(ctx context.Context) {
	atomic.AddInt32(&f.calls, 1)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Paths.WIPRoot = dir + "/wip"
	cfg.Paths.OutRoot = dir + "/out"
	cfg.Paths.LogDir = dir + "/log"
	cfg.Drive.Device = "/dev/sr0"
	cfg.Workflow.RipPollInterval = 1
	cfg.Workflow.TranscodePollInterval = 1
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

func TestRunLoopStopsBetweenIterations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	finished := make(chan struct{})
	var iterations int32

	go runLoop(ctx, time.Hour, nil, func(body context.Context) {
		atomic.AddInt32(&iterations, 1)
		close(started)
		// Cancellation arrives mid-iteration; the body context must stay
		// live so the iteration can finish.
		<-ctx.Done()
		if body.Err() != nil {
			t.Error("iteration context canceled mid-iteration")
		}
		close(finished)
	})

	<-started
	cancel()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("iteration did not finish after cancel")
	}

	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&iterations); got != 1 {
		t.Fatalf("expected exactly 1 iteration, got %d", got)
	}
}

func TestRunLoopNudgeBypassesInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nudge := make(chan struct{}, 1)
	ran := make(chan struct{}, 4)

	go runLoop(ctx, time.Hour, nudge, func(context.Context) {
		ran <- struct{}{}
	})

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("first iteration never ran")
	}

	nudge <- struct{}{}
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("nudge did not trigger an immediate iteration")
	}
}

func TestDaemonRunLifecycle(t *testing.T) {
	cfg := testConfig(t)
	rip := &fakeRipper{result: ripping.Result{Outcome: ripping.OutcomeNoDisc}}
	worker := &fakeTranscoder{}
	mounts := &fakeDrainer{}

	d, err := New(cfg, rip, worker, mounts, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.checkDrive = func(string) (disc.DriveStatus, error) {
		return disc.DriveStatusDiscOK, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	deadline := time.After(3 * time.Second)
	for atomic.LoadInt32(&rip.ripCalls) == 0 {
		select {
		case <-deadline:
			t.Fatal("rip loop never iterated")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("daemon did not stop after cancel")
	}

	if atomic.LoadInt32(&rip.cleanCalls) != 1 {
		t.Errorf("expected CleanStale once, got %d", rip.cleanCalls)
	}
	if atomic.LoadInt32(&mounts.calls) != 1 {
		t.Errorf("expected Drain once, got %d", mounts.calls)
	}
}

func TestDaemonRunRejectsSecondInstance(t *testing.T) {
	cfg := testConfig(t)

	other := flock.New(cfg.Paths.LogDir + "/rippa.lock")
	ok, err := other.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-acquire lock: ok=%v err=%v", ok, err)
	}
	defer other.Unlock() //nolint:errcheck

	d, err := New(cfg, &fakeRipper{}, &fakeTranscoder{}, &fakeDrainer{}, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := d.Run(context.Background()); err == nil {
		t.Fatal("expected error when lock is already held")
	}
}

func TestSkipByDriveStatus(t *testing.T) {
	cfg := testConfig(t)
	d, err := New(cfg, &fakeRipper{}, &fakeTranscoder{}, &fakeDrainer{}, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cases := []struct {
		name   string
		status disc.DriveStatus
		err    error
		skip   bool
	}{
		{name: "no disc", status: disc.DriveStatusNoDisc, skip: true},
		{name: "tray open", status: disc.DriveStatusTrayOpen, skip: true},
		{name: "disc ok", status: disc.DriveStatusDiscOK, skip: false},
		{name: "status unknown falls through", status: disc.DriveStatusNoInfo, err: context.DeadlineExceeded, skip: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d.checkDrive = func(string) (disc.DriveStatus, error) {
				return tc.status, tc.err
			}
			if got := d.skipByDriveStatus(); got != tc.skip {
				t.Fatalf("skipByDriveStatus = %v, want %v", got, tc.skip)
			}
		})
	}
}
