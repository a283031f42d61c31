package cron

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunRecordsStatus(t *testing.T) {
	s := New(nil)
	fail := errors.New("boom")
	calls := 0
	s.Register(Job{Name: "b-backup", Interval: time.Hour, Fn: func(context.Context) error {
		calls++
		if calls == 1 {
			return fail
		}
		return nil
	}})
	s.Register(Job{Name: "a-cleanup", Interval: time.Hour, Fn: func(context.Context) error { return nil }})

	if err := s.Run(context.Background(), "b-backup"); !errors.Is(err, fail) {
		t.Fatalf("first run err = %v", err)
	}
	items := s.List()
	if len(items) != 2 || items[0].Name != "a-cleanup" {
		t.Fatalf("list not sorted: %+v", items)
	}
	if items[1].Status != StatusReject || items[1].Message != "boom" || items[1].LastRunAt == nil {
		t.Fatalf("rejected job state = %+v", items[1])
	}

	if err := s.Run(context.Background(), "b-backup"); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := s.List()[1]; got.Status != StatusFulfill || got.Message != "" {
		t.Fatalf("fulfilled job state = %+v", got)
	}

	if err := s.Run(context.Background(), "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}
