package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatorWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	cfg := DefaultConfig()
	cfg.FilePath = path
	cfg.Compress = false

	r, err := NewFileRotator(cfg)
	if err != nil {
		t.Fatalf("NewFileRotator: %v", err)
	}

	if _, err := r.Write([]byte("line one\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := r.Write([]byte("line two\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if string(data) != "line one\nline two\n" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestRotatorAppendsOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	cfg := DefaultConfig()
	cfg.FilePath = path
	cfg.Compress = false

	r, err := NewFileRotator(cfg)
	if err != nil {
		t.Fatalf("NewFileRotator: %v", err)
	}
	r.Write([]byte("first\n"))
	r.Close()

	r, err = NewFileRotator(cfg)
	if err != nil {
		t.Fatalf("NewFileRotator: %v", err)
	}
	r.Write([]byte("second\n"))
	r.Close()

	data, _ := os.ReadFile(path)
	if string(data) != "first\nsecond\n" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestRotatorRotatesBySize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	cfg := DefaultConfig()
	cfg.FilePath = path
	cfg.MaxSize = 1
	cfg.Compress = false

	r, err := NewFileRotator(cfg)
	if err != nil {
		t.Fatalf("NewFileRotator: %v", err)
	}
	defer r.Close()

	chunk := bytes.Repeat([]byte("x"), 256*1024)
	for i := 0; i < 5; i++ {
		if _, err := r.Write(chunk); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	rotated := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "test.log.") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Error("expected at least one rotated file")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() > cfg.MaxSize*1024*1024 {
		t.Errorf("active file exceeds size limit: %d bytes", info.Size())
	}
}
