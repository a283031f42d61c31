package changes

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFanoutSkipsNil(t *testing.T) {
	var got []string
	record := func(tag string) Func {
		return func(_ context.Context, ch Change) { got = append(got, tag+":"+ch.ID) }
	}
	Fanout(record("a"), nil, record("b")).Notify(context.Background(), Change{Kind: KindMenu, ID: "m1"})
	if diff := cmp.Diff([]string{"a:m1", "b:m1"}, got); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}

	var none Func
	none.Notify(context.Background(), Change{})
}
