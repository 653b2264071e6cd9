package testutil

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler_Capture(t *testing.T) {
	logger, h := NewTestLogger(t)

	logger.Debug("upload received", slog.String("filename", "contracts.csv"))
	logger.Warn("upload could not be loaded", slog.Int("status", 422))

	require.Equal(t, 2, h.Count())
	assert.True(t, h.ContainsMessage("could not be loaded"))
	assert.True(t, h.ContainsAttr("filename", "contracts.csv"))
	assert.True(t, h.ContainsAttr("status", int64(422)))
	assert.Len(t, h.GetRecordsByLevel(slog.LevelDebug), 1)
	assert.Empty(t, h.GetRecordsByLevel(slog.LevelError))

	AssertLogContains(t, h, slog.LevelWarn, "could not be loaded")
	AssertLogAttr(t, h, "filename", "contracts.csv")

	h.Clear()
	assert.Zero(t, h.Count())
}

func TestBufferedSlogHandler_DerivedHandlers(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*slog.Logger)
		key   string
		value any
	}{
		{
			name:  "with attrs",
			log:   func(l *slog.Logger) { l.With(slog.String("component", "report_service")).Info("derived") },
			key:   "component",
			value: "report_service",
		},
		{
			name:  "with group",
			log:   func(l *slog.Logger) { l.WithGroup("report").Info("grouped", slog.Int("rows", 7)) },
			key:   "report.rows",
			value: int64(7),
		},
		{
			name:  "group attr",
			log:   func(l *slog.Logger) { l.Info("nested", slog.Group("summary", slog.String("source", "a.xlsx"))) },
			key:   "summary.source",
			value: "a.xlsx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, h := NewTestLogger(t)
			tt.log(logger)

			assert.Equal(t, 1, h.Count())
			assert.True(t, h.ContainsAttr(tt.key, tt.value), h.GetRecords())
		})
	}
}

func TestBufferedSlogHandler_Concurrent(t *testing.T) {
	logger, h := NewTestLogger(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.Info("concurrent log", slog.Int("goroutine", n))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, h.Count())
}
