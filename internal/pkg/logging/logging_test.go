package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDailyWriterRollsByDay(t *testing.T) {
	dir := t.TempDir()
	w, err := NewDailyWriter(dir)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	day := time.Date(2026, 10, 17, 23, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return day }
	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	day = day.Add(2 * time.Minute)
	if _, err := w.Write([]byte("second\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	for name, want := range map[string]string{
		"pagecraft_2026-10-17.log": "first\n",
		"pagecraft_2026-10-18.log": "second\n",
	} {
		got, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(got) != want {
			t.Fatalf("%s = %q, want %q", name, got, want)
		}
	}
}
