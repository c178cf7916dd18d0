package ripping

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"rippa/internal/logging"
)

// betaKeyPattern matches the MakeMKV beta key posted on the announcement
// page.
var betaKeyPattern = regexp.MustCompile(`T-[A-Za-z0-9@_]{60,}`)

// maxKeyPageBytes bounds how much of the announcement page is read.
const maxKeyPageBytes = 1 << 20

// BetaKeyRefresher fetches the current free MakeMKV beta key and rewrites
// the app_Key entry in the MakeMKV settings file.
type BetaKeyRefresher struct {
	client       *http.Client
	url          string
	settingsPath string
	logger       *slog.Logger
}

// NewBetaKeyRefresher builds a refresher for the given announcement URL
// and settings file.
func NewBetaKeyRefresher(url, settingsPath string, timeout time.Duration, logger *slog.Logger) *BetaKeyRefresher {
	return &BetaKeyRefresher{
		client:       &http.Client{Timeout: timeout},
		url:          url,
		settingsPath: settingsPath,
		logger:       logging.NewComponentLogger(logger, "keyfresh"),
	}
}

// Refresh fetches the page, extracts the key, and updates the settings
// file. A failure leaves the existing key in place.
func (r *BetaKeyRefresher) Refresh(ctx context.Context) error {
	key, err := r.fetchKey(ctx)
	if err != nil {
		return err
	}
	updated, err := writeSettingsKey(r.settingsPath, key)
	if err != nil {
		return err
	}
	if updated {
		r.logger.Info("makemkv key updated", logging.String("settings", r.settingsPath))
	} else {
		r.logger.Debug("makemkv key unchanged")
	}
	return nil
}

func (r *BetaKeyRefresher) fetchKey(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", fmt.Errorf("build key request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch key page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch key page: status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxKeyPageBytes))
	if err != nil {
		return "", fmt.Errorf("read key page: %w", err)
	}
	key := betaKeyPattern.FindString(string(body))
	if key == "" {
		return "", fmt.Errorf("no beta key found at %s", r.url)
	}
	return key, nil
}

// writeSettingsKey rewrites the app_Key line in the MakeMKV settings
// file, appending it when absent. Reports whether the file changed.
func writeSettingsKey(path, key string) (bool, error) {
	var lines []string
	contents, err := os.ReadFile(path)
	switch {
	case err == nil:
		if trimmed := strings.TrimRight(string(contents), "\n"); trimmed != "" {
			lines = strings.Split(trimmed, "\n")
		}
	case os.IsNotExist(err):
		// First run: MakeMKV has not written its settings yet.
	default:
		return false, fmt.Errorf("read settings: %w", err)
	}

	keyLine := fmt.Sprintf(`app_Key = "%s"`, key)
	replaced := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "app_Key") {
			if strings.TrimSpace(line) == keyLine {
				return false, nil
			}
			lines[i] = keyLine
			replaced = true
			break
		}
	}
	if !replaced {
		lines = append(lines, keyLine)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create settings directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return false, fmt.Errorf("write settings: %w", err)
	}
	return true, nil
}
