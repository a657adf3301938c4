package features

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featurePrep/internal/dataset"
	"featurePrep/internal/ports"
)

type mockLogger struct {
	infoMsgs []string
	warnMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func TestNewSource(t *testing.T) {
	logger := &mockLogger{}
	base := SourceConfig{Root: t.TempDir(), Symbol: "ETHUSDT", Interval: "1h", Targets: []string{"rsi14"}}

	src, err := NewSource(base, logger)
	require.NoError(t, err)
	assert.IsType(t, &ComputeFeatures{}, src)
	assert.Equal(t, "compute", src.Name())

	confidential := base
	confidential.Confidential = true
	src, err = NewSource(confidential, logger)
	require.NoError(t, err)
	assert.IsType(t, &LoadCachedFeatures{}, src)

	bad := base
	bad.Targets = []string{"unknown"}
	_, err = NewSource(bad, logger)
	assert.ErrorIs(t, err, ports.ErrInvalidArgument)

	_, err = NewSource(base, nil)
	assert.Error(t, err)
}

func TestComputeThenLoadCached(t *testing.T) {
	ctx := context.Background()
	logger := &mockLogger{}
	root := t.TempDir()
	path := Path(root, "ETHUSDT", "1h")
	assert.Equal(t, filepath.Join(root, "ETHUSDT", "1h", FileName), path)

	builder, err := NewBuilder([]string{"mom10", "body_ratio"}, false)
	require.NoError(t, err)
	computed := dataset.FromKlines(wavyKlines(30))
	require.NoError(t, NewComputeFeatures(builder, path, logger).AttachFeatures(ctx, computed))
	assert.FileExists(t, path)
	assert.FileExists(t, dataset.SchemaPath(path))

	// A later run covering five extra candles.
	current := dataset.FromKlines(wavyKlines(35))
	loader := NewLoadCachedFeatures(path, []string{"mom10", "body_ratio"}, logger)
	require.NoError(t, loader.AttachFeatures(ctx, current))

	for _, name := range []string{"mom10", "body_ratio"} {
		want, _ := computed.Column(name)
		got, ok := current.Column(name)
		require.True(t, ok)
		assert.Equal(t, want.Kind, got.Kind)
		for i := 0; i < 30; i++ {
			if math.IsNaN(want.Values[i]) {
				assert.True(t, math.IsNaN(got.Values[i]))
				continue
			}
			assert.Equal(t, want.Values[i], got.Values[i], "%s row %d", name, i)
		}
		for i := 30; i < 35; i++ {
			assert.True(t, math.IsNaN(got.Values[i]), "%s row %d", name, i)
		}
	}
	assert.Contains(t, logger.warnMsgs, "Rows missing from feature cache")
}

func TestLoadCachedFeatures_Errors(t *testing.T) {
	ctx := context.Background()
	logger := &mockLogger{}
	root := t.TempDir()
	path := Path(root, "ETHUSDT", "1h")

	err := NewLoadCachedFeatures(path, []string{"rsi14"}, logger).AttachFeatures(ctx, dataset.FromKlines(wavyKlines(5)))
	assert.ErrorIs(t, err, ports.ErrNotFound)

	require.NoError(t, dataset.WriteCSV(path, dataset.FromKlines(wavyKlines(5))))
	err = NewLoadCachedFeatures(path, []string{"rsi14"}, logger).AttachFeatures(ctx, dataset.FromKlines(wavyKlines(5)))
	assert.ErrorIs(t, err, ports.ErrSchemaMismatch)
}

func TestAttachFeatures_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	builder, err := NewBuilder(nil, false)
	require.NoError(t, err)
	err = NewComputeFeatures(builder, filepath.Join(t.TempDir(), FileName), &mockLogger{}).AttachFeatures(ctx, dataset.NewTable(nil))
	assert.ErrorIs(t, err, ports.ErrContextCanceled)
}
