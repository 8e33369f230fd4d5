package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// logStamp sorts lexically in time order
const logStamp = "2006-01-02T15-04-05.000"

// SetupLogFile opens <dir>/<prefix>-<stamp>.log for a run whose terminal is
// taken by the UI, keeping at most keep files with that prefix.
// The caller closes the file.
func SetupLogFile(dir, prefix string, keep int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := filepath.Join(dir, prefix+"-"+time.Now().Format(logStamp)+".log")
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if err := pruneLogs(dir, prefix, keep); err != nil {
		fmt.Fprintf(os.Stderr, "warning: prune old logs: %v\n", err)
	}
	return f, nil
}

func pruneLogs(dir, prefix string, keep int) error {
	files, err := filepath.Glob(filepath.Join(dir, prefix+"-*.log"))
	if err != nil || len(files) <= keep {
		return err
	}

	slices.Sort(files)
	for _, old := range files[:len(files)-keep] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("remove %s: %w", old, err)
		}
	}
	return nil
}
