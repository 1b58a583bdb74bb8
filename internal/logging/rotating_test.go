package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRotatingWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	w, err := newRotatingWriter(path, 1<<20, 2)
	if err != nil {
		t.Fatalf("newRotatingWriter() error: %v", err)
	}

	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if _, err := w.Write([]byte("second\n")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !bytes.Contains(data, []byte("first")) || !bytes.Contains(data, []byte("second")) {
		t.Errorf("log file missing entries: %q", data)
	}
}

func TestRotatingWriterRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	w, err := newRotatingWriter(path, 32, 2)
	if err != nil {
		t.Fatalf("newRotatingWriter() error: %v", err)
	}
	defer func() { _ = w.Close() }()

	line := []byte("0123456789abcdef0123456789\n")
	for i := 0; i < 3; i++ {
		if _, err := w.Write(line); err != nil {
			t.Fatalf("Write() error: %v", err)
		}
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("expected backup file after rotation: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat current file: %v", err)
	}
	if info.Size() > 32 {
		t.Errorf("current file size %d exceeds rotation threshold", info.Size())
	}
}

func TestRotatingWriterKeepsBackupCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	w, err := newRotatingWriter(path, 8, 2)
	if err != nil {
		t.Fatalf("newRotatingWriter() error: %v", err)
	}
	defer func() { _ = w.Close() }()

	for i := 0; i < 6; i++ {
		if _, err := w.Write([]byte("0123456789\n")); err != nil {
			t.Fatalf("Write() error: %v", err)
		}
	}

	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("backup beyond the configured count was kept")
	}
}
