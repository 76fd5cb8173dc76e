package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BackupTimeFormat names backup files, e.g. todos_20240101_120000.json
const BackupTimeFormat = "20060102_150405"

// Backup copies every existing document into dir as <name>_<timestamp>.json and
// returns the paths written. Documents that do not exist are skipped.
func Backup(ctx context.Context, r DocumentReader, dir string, at time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	stamp := at.Format(BackupTimeFormat)
	var written []string
	for _, name := range Documents {
		data, err := r.ReadDocument(ctx, name)
		if err != nil {
			return written, fmt.Errorf("backup %s: %w", name, err)
		}
		if data == nil {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", name, stamp))
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return written, fmt.Errorf("backup %s: %w", name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
