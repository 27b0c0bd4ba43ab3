package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileRotator writes to a log file and rotates it when it exceeds the
// configured size or when the calendar day changes.
type FileRotator struct {
	config *Config

	mu       sync.Mutex
	file     *os.File
	size     int64
	openedAt time.Time
}

// NewFileRotator opens (or creates) the configured log file.
func NewFileRotator(cfg *Config) (*FileRotator, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("log file path is empty")
	}

	r := &FileRotator{config: cfg}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRotator) open() error {
	dir := filepath.Dir(r.config.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(r.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	r.file = f
	r.size = info.Size()
	r.openedAt = time.Now()
	return nil
}

// Write appends p to the log file, rotating first when needed.
func (r *FileRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shouldRotate(int64(len(p))) {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *FileRotator) shouldRotate(incoming int64) bool {
	if r.config.MaxSize > 0 && r.size+incoming > r.config.MaxSize*1024*1024 {
		return true
	}
	now := time.Now()
	return now.YearDay() != r.openedAt.YearDay() || now.Year() != r.openedAt.Year()
}

// rotate renames the current file with a timestamp suffix and opens a
// fresh one. Compression and cleanup run off the write path.
func (r *FileRotator) rotate() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}

	rotated := fmt.Sprintf("%s.%s", r.config.FilePath, time.Now().Format("20060102-150405"))
	if err := os.Rename(r.config.FilePath, rotated); err != nil {
		return fmt.Errorf("rename log file: %w", err)
	}

	if err := r.open(); err != nil {
		return err
	}

	go func() {
		if r.config.Compress {
			if err := compressFile(rotated); err == nil {
				rotated += ".gz"
			}
		}
		r.cleanup()
	}()
	return nil
}

func compressFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer dst.Close()

	gw := gzip.NewWriter(dst)
	if _, err := io.Copy(gw, src); err != nil {
		gw.Close()
		os.Remove(path + ".gz")
		return err
	}
	if err := gw.Close(); err != nil {
		os.Remove(path + ".gz")
		return err
	}

	src.Close()
	return os.Remove(path)
}

// cleanup removes rotated files beyond MaxBackups or older than
// MaxAge days.
func (r *FileRotator) cleanup() {
	dir := filepath.Dir(r.config.FilePath)
	base := filepath.Base(r.config.FilePath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	type rotatedFile struct {
		path    string
		modTime time.Time
	}
	var rotated []rotatedFile

	for _, e := range entries {
		name := e.Name()
		if name == base || !strings.HasPrefix(name, base+".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		rotated = append(rotated, rotatedFile{
			path:    filepath.Join(dir, name),
			modTime: info.ModTime(),
		})
	}

	sort.Slice(rotated, func(i, j int) bool {
		return rotated[i].modTime.After(rotated[j].modTime)
	})

	cutoff := time.Now().AddDate(0, 0, -r.config.MaxAge)
	for i, f := range rotated {
		if r.config.MaxBackups > 0 && i >= r.config.MaxBackups {
			os.Remove(f.path)
			continue
		}
		if r.config.MaxAge > 0 && f.modTime.Before(cutoff) {
			os.Remove(f.path)
		}
	}
}

// Sync flushes the current file to disk.
func (r *FileRotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	return r.file.Sync()
}

// Close closes the current file.
func (r *FileRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
