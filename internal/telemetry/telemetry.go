// Package telemetry appends JSON-lines events describing session activity.
//
// Events never contain raw user or model text; callers pass size features
// (see internal/metrics) instead.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventsFile is the file name used under the artifacts directory.
const EventsFile = "events.jsonl"

// Recorder writes one JSON object per event. The zero value and nil are
// both valid and drop every event.
type Recorder struct {
	logger *zap.Logger
	file   *os.File
}

// Nop returns a recorder that drops everything.
func Nop() *Recorder { return &Recorder{} }

// Open returns a recorder appending to dir/events.jsonl. When enabled is
// false nothing is created on disk.
func Open(dir string, enabled bool) (*Recorder, error) {
	if !enabled {
		return Nop(), nil
	}
	if dir == "" {
		dir = ".agent"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("telemetry: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, EventsFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		MessageKey:     "event",
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), zapcore.InfoLevel)
	return &Recorder{logger: zap.New(core), file: f}, nil
}

// Emit writes a single event. Fields are written in key order; the caller's
// map is not retained.
func (r *Recorder) Emit(name string, fields map[string]any) {
	if r == nil || r.logger == nil {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zf := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		zf = append(zf, zap.Any(k, fields[k]))
	}
	r.logger.Info(name, zf...)
}

// Close flushes and closes the events file.
func (r *Recorder) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	_ = r.logger.Sync()
	err := r.file.Close()
	r.file = nil
	r.logger = nil
	return err
}
