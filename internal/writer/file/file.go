// internal/writer/file/file.go

// Package file stores each cycle as a gzip-compressed JSON array.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/solarian-energy/datalogger/internal/poller"
	"github.com/solarian-energy/datalogger/internal/writer"
)

// Options configures a Writer.
type Options struct {
	DataDir    string // final destination
	TmpDir     string // staging, same filesystem as DataDir
	Serial     string // board serial
	ConfigName string // device map base name without extension
	Level      *int   // gzip level; nil means gzip.DefaultCompression

	Log *zap.Logger
}

// Writer writes to TmpDir and renames into DataDir, so readers of
// DataDir never observe a partial file.
type Writer struct {
	opts  Options
	level int
	log   *zap.Logger
}

var _ writer.Writer = (*Writer)(nil)

// New validates options and creates the directories.
func New(opts Options) (*Writer, error) {
	if opts.DataDir == "" || opts.TmpDir == "" {
		return nil, errors.New("file writer: data and tmp dirs required")
	}
	if opts.ConfigName == "" {
		return nil, errors.New("file writer: config name required")
	}
	level := gzip.DefaultCompression
	if opts.Level != nil {
		level = *opts.Level
		if level < gzip.HuffmanOnly || level > gzip.BestCompression {
			return nil, fmt.Errorf("file writer: invalid gzip level %d", level)
		}
	}
	for _, dir := range []string{opts.DataDir, opts.TmpDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("file writer: %w", err)
		}
	}

	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{opts: opts, level: level, log: log}, nil
}

// FileName is solarian_<serial>_<config>_<YYYYmmddHHMM>.json.gz, in local time.
func FileName(serial, configName string, at time.Time) string {
	return fmt.Sprintf("solarian_%s_%s_%s.json.gz", serial, configName, at.Local().Format("200601021504"))
}

func (w *Writer) Name() string { return "file" }

func (w *Writer) Write(_ context.Context, res poller.Result) error {
	at := res.At
	if at.IsZero() {
		at = time.Now()
	}
	name := FileName(w.opts.Serial, w.opts.ConfigName, at)
	tmp := filepath.Join(w.opts.TmpDir, name)
	dst := filepath.Join(w.opts.DataDir, name)

	body, err := json.Marshal(writer.Payload(res))
	if err != nil {
		return fmt.Errorf("file writer: encode: %w", err)
	}

	if err := w.writeGzip(tmp, body); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	w.log.Debug("json file write successful", zap.String("path", tmp), zap.Int("bytes", len(body)))

	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("file writer: atomic move: %w", err)
	}
	w.log.Debug("file moved into place", zap.String("path", dst))
	return nil
}

func (w *Writer) writeGzip(path string, body []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("file writer: %w", err)
	}

	gz, err := gzip.NewWriterLevel(f, w.level)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("file writer: %w", err)
	}

	if _, err := gz.Write(body); err != nil {
		_ = gz.Close()
		_ = f.Close()
		return fmt.Errorf("file writer: write: %w", err)
	}
	if err := gz.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("file writer: gzip: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("file writer: sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("file writer: %w", err)
	}
	return nil
}

func (w *Writer) Close() error { return nil }
