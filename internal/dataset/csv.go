package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"featurePrep/internal/ports"
)

// SchemaVersion is bumped whenever the CSV layout changes.
const SchemaVersion = 1

// Schema describes the columns of a persisted table. It is stored next to
// the CSV file so that column kinds survive a round trip.
type Schema struct {
	Version int            `yaml:"version"`
	Columns []ColumnSchema `yaml:"columns"`
}

// ColumnSchema is the persisted description of one column.
type ColumnSchema struct {
	Name string `yaml:"name"`
	Kind Kind   `yaml:"kind"`
}

// SchemaPath returns the sidecar path for a CSV path: features.csv -> features.schema.yaml.
func SchemaPath(csvPath string) string {
	return strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".schema.yaml"
}

// WriteCSV writes the table and its schema sidecar, creating parent directories.
func WriteCSV(path string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := writeRows(file, t); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	return writeSchema(SchemaPath(path), t)
}

func writeRows(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)

	header := make([]string, 0, len(t.columns)+2)
	header = append(header, ColumnTimestamp)
	header = append(header, t.ColumnNames()...)
	header = append(header, ColumnLabel)
	if err := writer.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for i := 0; i < t.Len(); i++ {
		record[0] = t.timestamps[i].UTC().Format(time.RFC3339Nano)
		for j, c := range t.columns {
			record[j+1] = strconv.FormatFloat(c.Values[i], 'f', -1, 64)
		}
		record[len(record)-1] = strconv.Itoa(t.labels[i])
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeSchema(path string, t *Table) error {
	schema := Schema{Version: SchemaVersion}
	for _, c := range t.columns {
		schema.Columns = append(schema.Columns, ColumnSchema{Name: c.Name, Kind: c.Kind})
	}
	data, err := yaml.Marshal(&schema)
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema %s: %w", path, err)
	}
	return nil
}

// ReadSchema loads a schema sidecar. A missing file returns nil and no error.
func ReadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}

	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %v: %w", path, err, ports.ErrMalformedData)
	}
	if schema.Version != SchemaVersion {
		return nil, fmt.Errorf("schema %s has version %d, expected %d: %w", path, schema.Version, SchemaVersion, ports.ErrSchemaMismatch)
	}
	return &schema, nil
}

// ReadCSV loads a table written by WriteCSV. Column kinds come from the
// schema sidecar when present and from KindFromName otherwise.
func ReadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("feature file %s: %w", path, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	schema, err := ReadSchema(SchemaPath(path))
	if err != nil {
		return nil, err
	}

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v: %w", path, err, ports.ErrMalformedData)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s has no header: %w", path, ports.ErrMalformedData)
	}

	header := records[0]
	if len(header) < 2 || header[0] != ColumnTimestamp || header[len(header)-1] != ColumnLabel {
		return nil, fmt.Errorf("%s header must start with %q and end with %q: %w", path, ColumnTimestamp, ColumnLabel, ports.ErrMalformedData)
	}
	names := header[1 : len(header)-1]

	kinds, err := columnKinds(names, schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rows := records[1:]
	timestamps := make([]time.Time, len(rows))
	labels := make([]int, len(rows))
	values := make([][]float64, len(names))
	for j := range values {
		values[j] = make([]float64, len(rows))
	}

	for i, rec := range rows {
		line := i + 2
		ts, err := time.Parse(time.RFC3339Nano, rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: invalid timestamp %q: %w", path, line, rec[0], ports.ErrMalformedData)
		}
		timestamps[i] = ts
		for j := range names {
			v, err := strconv.ParseFloat(rec[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: invalid %s value %q: %w", path, line, names[j], rec[j+1], ports.ErrMalformedData)
			}
			values[j][i] = v
		}
		label, err := strconv.Atoi(rec[len(rec)-1])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: invalid label %q: %w", path, line, rec[len(rec)-1], ports.ErrMalformedData)
		}
		labels[i] = label
	}

	t := NewTable(timestamps)
	t.labels = labels
	for j, name := range names {
		if err := t.AddColumn(name, kinds[j], values[j]); err != nil {
			return nil, fmt.Errorf("%s: %v: %w", path, err, ports.ErrMalformedData)
		}
	}
	return t, nil
}

func columnKinds(names []string, schema *Schema) ([]Kind, error) {
	kinds := make([]Kind, len(names))
	if schema == nil {
		for i, name := range names {
			kinds[i] = KindFromName(name)
		}
		return kinds, nil
	}

	byName := make(map[string]Kind, len(schema.Columns))
	for _, c := range schema.Columns {
		byName[c.Name] = c.Kind
	}
	for i, name := range names {
		kind, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("column %q is not described by the schema: %w", name, ports.ErrSchemaMismatch)
		}
		kinds[i] = kind
	}
	return kinds, nil
}
