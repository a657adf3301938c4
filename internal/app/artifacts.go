package app

import (
	"fmt"
	"path/filepath"
	"time"

	"featurePrep/internal/dataset"
)

// ArtifactDir returns the run directory <root>/<YYYY_Month>/Day_DD/HH-MM-SS.
func ArtifactDir(root string, now time.Time) string {
	return filepath.Join(root, now.Format("2006_January"), now.Format("Day_02"), now.Format("15-04-05"))
}

// WriteSplits stores the three partitions as train.csv, validation.csv and
// test.csv in dir and returns their paths.
func WriteSplits(dir string, train, validation, test *dataset.Table) ([]string, error) {
	parts := []struct {
		name  string
		table *dataset.Table
	}{
		{"train.csv", train},
		{"validation.csv", validation},
		{"test.csv", test},
	}

	paths := make([]string, 0, len(parts))
	for _, part := range parts {
		path := filepath.Join(dir, part.name)
		if err := dataset.WriteCSV(path, part.table); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", part.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
