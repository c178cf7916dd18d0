package process

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"rippa/internal/logging"
	"rippa/internal/services"
)

// fakeRunner records every invocation and replies from a scripted map
// keyed by the joined argv.
type fakeRunner struct {
	calls   [][]string
	replies map[string]error
}

func (f *fakeRunner) Output(ctx context.Context, argv ...string) (string, error) {
	return "", f.Run(ctx, argv...)
}

func (f *fakeRunner) Run(ctx context.Context, argv ...string) error {
	f.calls = append(f.calls, argv)
	return f.replies[strings.Join(argv, " ")]
}

func (f *fakeRunner) RunIn(ctx context.Context, dir string, argv ...string) error {
	return f.Run(ctx, argv...)
}

func permissionError(argv ...string) error {
	return &CommandError{Argv: argv, ExitCode: 1, Output: "umount: only root can do that"}
}

func TestEscalatorSkipsSudoOnSuccess(t *testing.T) {
	runner := &fakeRunner{replies: map[string]error{}}
	esc := NewEscalator(runner, logging.NewNop())
	if err := esc.Run(context.Background(), "eject", "/dev/sr0"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(runner.calls))
	}
}

func TestEscalatorRetriesOnceOnPermissionFailure(t *testing.T) {
	runner := &fakeRunner{replies: map[string]error{
		"umount /mnt/sr0": permissionError("umount", "/mnt/sr0"),
	}}
	esc := NewEscalator(runner, logging.NewNop())
	if err := esc.Run(context.Background(), "umount", "/mnt/sr0"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(runner.calls))
	}
	if runner.calls[1][0] != "sudo" {
		t.Fatalf("second attempt not elevated: %v", runner.calls[1])
	}
}

func TestEscalatorDoesNotEscalateDomainFailures(t *testing.T) {
	domainErr := &CommandError{Argv: []string{"mount"}, ExitCode: 32, Output: "wrong fs type"}
	runner := &fakeRunner{replies: map[string]error{
		"mount /dev/sr0 /mnt": domainErr,
	}}
	esc := NewEscalator(runner, logging.NewNop())
	err := esc.Run(context.Background(), "mount", "/dev/sr0", "/mnt")
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) || cmdErr.ExitCode != 32 {
		t.Fatalf("expected the original failure, got %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected no escalation, got %d attempts", len(runner.calls))
	}
}

func TestEscalatorSecondFailureIsPermissionError(t *testing.T) {
	runner := &fakeRunner{replies: map[string]error{
		"eject /dev/sr0":      permissionError("eject", "/dev/sr0"),
		"sudo eject /dev/sr0": permissionError("sudo", "eject", "/dev/sr0"),
	}}
	esc := NewEscalator(runner, logging.NewNop())
	err := esc.Run(context.Background(), "eject", "/dev/sr0")
	if !errors.Is(err, services.ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", len(runner.calls))
	}
}

func TestIsPermissionDenied(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"fs permission", fs.ErrPermission, true},
		{"command output", permissionError("umount"), true},
		{"domain failure", &CommandError{Argv: []string{"dd"}, ExitCode: 1, Output: "no space left"}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPermissionDenied(tc.err); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
