package disc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rippa/internal/logging"
	"rippa/internal/mounts"
	"rippa/internal/process"
)

// probeRunner replies to Output calls from a script and treats Run calls
// (mount) as successful no-ops.
type probeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *probeRunner) Output(ctx context.Context, argv ...string) (string, error) {
	key := strings.Join(argv, " ")
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	out, ok := f.outputs[key]
	if !ok {
		return "", &process.CommandError{Argv: argv, ExitCode: 2}
	}
	return out, nil
}

func (f *probeRunner) Run(ctx context.Context, argv ...string) error {
	key := strings.Join(argv, " ")
	f.calls = append(f.calls, key)
	return f.errs[key]
}

func (f *probeRunner) RunIn(ctx context.Context, dir string, argv ...string) error {
	return f.Run(ctx, argv...)
}

func newTestClassifier(t *testing.T, runner *probeRunner) (*Classifier, string) {
	t.Helper()
	root := t.TempDir()
	registry := mounts.NewRegistry(process.NewEscalator(runner, logging.NewNop()), logging.NewNop())
	c := NewClassifier(runner, registry, logging.NewNop(), "/dev/sr0", root)
	return c, filepath.Join(root, "mnt", "sr0")
}

func TestClassifyRedbookFirst(t *testing.T) {
	runner := &probeRunner{outputs: map[string]string{
		"cdparanoia -d /dev/sr0 -sQ": sampleTOC,
		// blkid output present too; the audio probe must win.
		"blkid /dev/sr0": `/dev/sr0: LABEL="X" UUID="Y"`,
	}}
	c, _ := newTestClassifier(t, runner)

	d, err := c.Classify(context.Background())
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if d == nil || d.Kind != KindRedbook {
		t.Fatalf("disc = %+v", d)
	}
	if d.Identity != Fingerprint([]int{240000, 180500, 300200}) {
		t.Fatalf("identity = %q", d.Identity)
	}
	for _, call := range runner.calls {
		if strings.HasPrefix(call, "blkid") {
			t.Fatal("metadata probe must not run when the audio probe succeeds")
		}
	}
}

func TestClassifyNoDisc(t *testing.T) {
	runner := &probeRunner{
		errs: map[string]error{
			"cdparanoia -d /dev/sr0 -sQ": &process.CommandError{Argv: []string{"cdparanoia"}, ExitCode: 1},
			"blkid /dev/sr0":             &process.CommandError{Argv: []string{"blkid"}, ExitCode: 2},
		},
	}
	c, _ := newTestClassifier(t, runner)

	d, err := c.Classify(context.Background())
	if err != nil {
		t.Fatalf("no disc must not be an error: %v", err)
	}
	if d != nil {
		t.Fatalf("disc = %+v", d)
	}
}

func TestClassifyDVDByVideoTS(t *testing.T) {
	runner := &probeRunner{outputs: map[string]string{
		"blkid /dev/sr0": `/dev/sr0: LABEL="MOVIE" UUID="ABCD-1234" TYPE="udf"`,
	}}
	c, mountPoint := newTestClassifier(t, runner)
	if err := os.MkdirAll(filepath.Join(mountPoint, "VIDEO_TS"), 0o755); err != nil {
		t.Fatal(err)
	}

	d, err := c.Classify(context.Background())
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if d.Kind != KindDVD || d.Identity != "MOVIE-ABCD-1234" {
		t.Fatalf("disc = %+v", d)
	}
}

func TestClassifyBluRayByBDMV(t *testing.T) {
	runner := &probeRunner{outputs: map[string]string{
		"blkid /dev/sr0": `/dev/sr0: LABEL="BD" UUID="9999" TYPE="udf"`,
	}}
	c, mountPoint := newTestClassifier(t, runner)
	if err := os.MkdirAll(filepath.Join(mountPoint, "BDMV"), 0o755); err != nil {
		t.Fatal(err)
	}

	d, err := c.Classify(context.Background())
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if d.Kind != KindBluRay {
		t.Fatalf("disc = %+v", d)
	}
}

func TestClassifyDataDiscFallback(t *testing.T) {
	runner := &probeRunner{outputs: map[string]string{
		"blkid /dev/sr0": `/dev/sr0: LABEL="DATA" UUID="1111" TYPE="iso9660"`,
	}}
	c, _ := newTestClassifier(t, runner)

	d, err := c.Classify(context.Background())
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if d.Kind != KindDataDisc || d.Identity != "DATA-1111" {
		t.Fatalf("disc = %+v", d)
	}
}

func TestClassifyToleratesMountFailure(t *testing.T) {
	runner := &probeRunner{
		outputs: map[string]string{
			"blkid /dev/sr0": `/dev/sr0: LABEL="DATA" UUID="1111"`,
		},
		errs: map[string]error{},
	}
	c, mountPoint := newTestClassifier(t, runner)
	runner.errs["mount /dev/sr0 "+mountPoint] = errors.New("already mounted")

	d, err := c.Classify(context.Background())
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if d == nil || d.Kind != KindDataDisc {
		t.Fatalf("disc = %+v", d)
	}
}
