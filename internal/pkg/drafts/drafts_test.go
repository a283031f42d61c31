package drafts

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type sample struct {
	Names []string `json:"names"`
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Minute)
	s.now = func() time.Time { return now }

	key := Key("org", KindMenu, "m1")
	if key != "pagecraft:draft:org:menu:m1" {
		t.Fatalf("key = %q", key)
	}

	var got sample
	if ok, err := s.Load(ctx, key, &got); ok || err != nil {
		t.Fatalf("load missing: ok=%v err=%v", ok, err)
	}

	want := sample{Names: []string{"a", "b"}}
	if err := s.Save(ctx, key, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ok, err := s.Load(ctx, key, &got); !ok || err != nil {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("draft mismatch (-want +got):\n%s", diff)
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := s.Load(ctx, key, &got); ok {
		t.Fatal("expired draft still loaded")
	}

	_ = s.Save(ctx, key, want)
	_ = s.Delete(ctx, key)
	if ok, _ := s.Load(ctx, key, &got); ok {
		t.Fatal("deleted draft still loaded")
	}
}
