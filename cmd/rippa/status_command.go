package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"rippa/internal/config"
	"rippa/internal/staging"
)

// stageEntry is one identity at one point in the pipeline.
type stageEntry struct {
	Kind     string
	Identity string
	Stage    string
	Files    int
	Bytes    int64
}

func newStatusCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show discs in the staging and output trees",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			layout := staging.NewLayout(cfg.Paths.WIPRoot, cfg.Paths.OutRoot)
			entries, err := collectStatus(layout)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No discs in the pipeline")
				return nil
			}

			rows := make([]table.Row, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, table.Row{e.Kind, e.Identity, e.Stage, e.Files, formatBytes(e.Bytes)})
			}
			fmt.Fprintln(out, renderTable(table.Row{"Kind", "Identity", "Stage", "Files", "Size"}, rows, 4, 5))
			return nil
		},
	}
}

// collectStatus walks every staging and output directory and reports one
// row per disc identity per stage.
func collectStatus(layout staging.Layout) ([]stageEntry, error) {
	type location struct {
		kind  string
		stage string
		path  string
		flat  bool // directory of files rather than per-identity subdirs
	}

	locations := []location{
		{kind: "dvd", stage: "ripping", path: layout.DVDRipDir("")},
		{kind: "dvd", stage: "staged", path: layout.DVDStagedRoot()},
		{kind: "dvd", stage: "transcoding", path: layout.DVDTranscodeDir("")},
		{kind: "dvd", stage: "done", path: layout.DVDOutDir("")},
		{kind: "redbook", stage: "ripping", path: layout.RedbookWIPDir()},
		{kind: "redbook", stage: "done", path: layout.RedbookOutRoot()},
		{kind: "iso", stage: "ripping", path: filepath.Join(layout.WIPRoot, "iso"), flat: true},
		{kind: "iso", stage: "done", path: filepath.Join(layout.OutRoot, "iso"), flat: true},
	}

	var entries []stageEntry
	for _, loc := range locations {
		children, err := os.ReadDir(loc.path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", loc.path, err)
		}
		for _, child := range children {
			entry := stageEntry{Kind: loc.kind, Stage: loc.stage}
			if loc.flat {
				if child.IsDir() {
					continue
				}
				entry.Identity = strings.TrimSuffix(child.Name(), filepath.Ext(child.Name()))
				info, err := child.Info()
				if err != nil {
					return nil, fmt.Errorf("stat %s: %w", child.Name(), err)
				}
				entry.Files = 1
				entry.Bytes = info.Size()
			} else {
				if !child.IsDir() {
					continue
				}
				entry.Identity = child.Name()
				files, size, err := measureTree(filepath.Join(loc.path, child.Name()))
				if err != nil {
					return nil, err
				}
				entry.Files = files
				entry.Bytes = size
			}
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind < entries[j].Kind
		}
		if entries[i].Identity != entries[j].Identity {
			return entries[i].Identity < entries[j].Identity
		}
		return entries[i].Stage < entries[j].Stage
	})
	return entries, nil
}

func measureTree(root string) (int, int64, error) {
	var files int
	var size int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		size += info.Size()
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, size, nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
