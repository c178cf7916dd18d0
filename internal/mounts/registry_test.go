package mounts

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"rippa/internal/logging"
	"rippa/internal/process"
)

type scriptedRunner struct {
	calls   [][]string
	replies map[string]error
}

func (f *scriptedRunner) Output(ctx context.Context, argv ...string) (string, error) {
	return "", f.Run(ctx, argv...)
}

func (f *scriptedRunner) Run(ctx context.Context, argv ...string) error {
	f.calls = append(f.calls, argv)
	return f.replies[strings.Join(argv, " ")]
}

func (f *scriptedRunner) RunIn(ctx context.Context, dir string, argv ...string) error {
	return f.Run(ctx, argv...)
}

func newTestRegistry(runner *scriptedRunner) *Registry {
	return NewRegistry(process.NewEscalator(runner, logging.NewNop()), logging.NewNop())
}

func TestMountRegistersAndDrainReleases(t *testing.T) {
	runner := &scriptedRunner{replies: map[string]error{}}
	reg := newTestRegistry(runner)
	ctx := context.Background()

	mountPoint := filepath.Join(t.TempDir(), "mnt")
	if err := reg.Mount(ctx, "/dev/sr0", mountPoint); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if got := reg.Active(); len(got) != 1 || got[0] != mountPoint {
		t.Fatalf("active = %v", got)
	}

	reg.Drain(ctx)
	if got := reg.Active(); len(got) != 0 {
		t.Fatalf("drain left mounts: %v", got)
	}

	want := [][]string{
		{"mount", "/dev/sr0", mountPoint},
		{"umount", mountPoint},
	}
	if len(runner.calls) != len(want) {
		t.Fatalf("calls = %v", runner.calls)
	}
}

func TestDrainRunsOnlyOnce(t *testing.T) {
	runner := &scriptedRunner{replies: map[string]error{}}
	reg := newTestRegistry(runner)
	ctx := context.Background()

	mountPoint := filepath.Join(t.TempDir(), "mnt")
	if err := reg.Mount(ctx, "/dev/sr0", mountPoint); err != nil {
		t.Fatalf("mount: %v", err)
	}

	reg.Drain(ctx)
	reg.Drain(ctx)

	unmounts := 0
	for _, call := range runner.calls {
		if call[0] == "umount" {
			unmounts++
		}
	}
	if unmounts != 1 {
		t.Fatalf("expected exactly one unmount, got %d", unmounts)
	}
}

func TestUnmountFailureKeepsEntry(t *testing.T) {
	runner := &scriptedRunner{replies: map[string]error{}}
	reg := newTestRegistry(runner)
	ctx := context.Background()

	mountPoint := filepath.Join(t.TempDir(), "mnt")
	if err := reg.Mount(ctx, "/dev/sr0", mountPoint); err != nil {
		t.Fatalf("mount: %v", err)
	}

	runner.replies["umount "+mountPoint] = &process.CommandError{
		Argv: []string{"umount", mountPoint}, ExitCode: 32, Output: "target is busy",
	}
	if err := reg.Unmount(ctx, mountPoint); err == nil {
		t.Fatal("expected unmount failure")
	}
	if got := reg.Active(); len(got) != 1 {
		t.Fatalf("entry should remain after failed unmount: %v", got)
	}
}
