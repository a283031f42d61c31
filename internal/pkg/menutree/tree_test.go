package menutree_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pagecraft/core/internal/pkg/menutree"
)

func sequentialIDs() menutree.Option {
	n := 0
	return menutree.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	})
}

func leaf(id string) menutree.Item {
	return menutree.Item{ID: id, Name: id, Link: "/" + id, Children: []menutree.Item{}}
}

func withChildren(id string, children ...menutree.Item) menutree.Item {
	it := leaf(id)
	it.Children = children
	return it
}

// shape renders ids as "A(A1,A2) B" for compact comparisons.
func shape(items []menutree.Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if len(it.Children) == 0 {
			parts = append(parts, it.ID)
			continue
		}
		parts = append(parts, it.ID+"("+strings.Join(strings.Fields(shape(it.Children)), ",")+")")
	}
	return strings.Join(parts, " ")
}

func TestMoveRootReorder(t *testing.T) {
	tree := menutree.Load([]menutree.Item{leaf("A"), leaf("B"), leaf("C")})

	moved, err := tree.Move(menutree.Position{Index: 0, Parent: menutree.Root}, menutree.Position{Index: 2, Parent: menutree.Root})
	if err != nil || !moved {
		t.Fatalf("move: moved=%v err=%v", moved, err)
	}
	if got := shape(tree.Items()); got != "B C A" {
		t.Fatalf("shape = %q, want %q", got, "B C A")
	}
}

func TestMoveDestinationIsPostRemoval(t *testing.T) {
	tests := []struct {
		name     string
		src, dst menutree.Position
		want     string
	}{
		{name: "last to first", src: menutree.Position{Index: 3, Parent: menutree.Root}, dst: menutree.Position{Index: 0, Parent: menutree.Root}, want: "D A B(B1,B2) C"},
		{name: "forward by one", src: menutree.Position{Index: 0, Parent: menutree.Root}, dst: menutree.Position{Index: 1, Parent: menutree.Root}, want: "B(B1,B2) A C D"},
		{name: "index clamped", src: menutree.Position{Index: 0, Parent: menutree.Root}, dst: menutree.Position{Index: 99, Parent: menutree.Root}, want: "B(B1,B2) C D A"},
		{name: "reorder children", src: menutree.Position{Index: 1, Parent: 1}, dst: menutree.Position{Index: 0, Parent: 1}, want: "A B(B2,B1) C D"},
		{name: "promote child", src: menutree.Position{Index: 0, Parent: 1}, dst: menutree.Position{Index: 0, Parent: menutree.Root}, want: "B1 A B(B2) C D"},
		{name: "demote leaf", src: menutree.Position{Index: 2, Parent: menutree.Root}, dst: menutree.Position{Index: 1, Parent: 1}, want: "A B(B1,C,B2) D"},
		{name: "demote leaf before its parent", src: menutree.Position{Index: 0, Parent: menutree.Root}, dst: menutree.Position{Index: 5, Parent: 1}, want: "B(B1,B2,A) C D"},
		{name: "child to other parent", src: menutree.Position{Index: 0, Parent: 1}, dst: menutree.Position{Index: 0, Parent: 3}, want: "A B(B2) C D(B1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := menutree.Load([]menutree.Item{
				leaf("A"), withChildren("B", leaf("B1"), leaf("B2")), leaf("C"), leaf("D"),
			})
			moved, err := tree.Move(tt.src, tt.dst)
			if err != nil || !moved {
				t.Fatalf("move: moved=%v err=%v", moved, err)
			}
			if got := shape(tree.Items()); got != tt.want {
				t.Fatalf("shape = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMoveDemotionGuard(t *testing.T) {
	initial := []menutree.Item{withChildren("A", leaf("A1")), leaf("B")}

	tests := []struct {
		name string
		dst  menutree.Position
	}{
		{name: "into sibling children", dst: menutree.Position{Index: 0, Parent: 1}},
		{name: "into own children", dst: menutree.Position{Index: 0, Parent: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := menutree.Load(initial)
			moved, err := tree.Move(menutree.Position{Index: 0, Parent: menutree.Root}, tt.dst)
			if err != nil {
				t.Fatalf("guarded move must not error: %v", err)
			}
			if moved {
				t.Fatal("guarded move reported as moved")
			}
			if diff := cmp.Diff(initial, tree.Items()); diff != "" {
				t.Fatalf("tree changed (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("childless item into own slot", func(t *testing.T) {
		tree := menutree.Load([]menutree.Item{leaf("A"), leaf("B")})
		moved, err := tree.Move(menutree.Position{Index: 1, Parent: menutree.Root}, menutree.Position{Index: 0, Parent: 1})
		if err != nil || moved {
			t.Fatalf("moved=%v err=%v", moved, err)
		}
		if got := shape(tree.Items()); got != "A B" {
			t.Fatalf("shape = %q", got)
		}
	})
}

func TestMoveOutOfRange(t *testing.T) {
	tree := menutree.Load([]menutree.Item{withChildren("A", leaf("A1")), leaf("B")})
	cases := []struct{ src, dst menutree.Position }{
		{src: menutree.Position{Index: 2, Parent: menutree.Root}, dst: menutree.Position{Index: 0, Parent: menutree.Root}},
		{src: menutree.Position{Index: 1, Parent: 0}, dst: menutree.Position{Index: 0, Parent: menutree.Root}},
		{src: menutree.Position{Index: 0, Parent: 5}, dst: menutree.Position{Index: 0, Parent: menutree.Root}},
		{src: menutree.Position{Index: 1, Parent: menutree.Root}, dst: menutree.Position{Index: -1, Parent: menutree.Root}},
		{src: menutree.Position{Index: 1, Parent: menutree.Root}, dst: menutree.Position{Index: 0, Parent: 7}},
	}
	for _, c := range cases {
		if _, err := tree.Move(c.src, c.dst); !errors.Is(err, menutree.ErrPosition) {
			t.Fatalf("Move(%s, %s) err = %v, want ErrPosition", c.src, c.dst, err)
		}
	}
	if got := shape(tree.Items()); got != "A(A1) B" {
		t.Fatalf("tree changed: %q", got)
	}
}

func TestAdd(t *testing.T) {
	tree := menutree.Load([]menutree.Item{withChildren("A", leaf("A1")), leaf("B")}, sequentialIDs())

	item, err := tree.Add("", menutree.Input{Name: "New", Link: "/new"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	want := menutree.Item{ID: "gen-1", Name: "New", Link: "/new", Children: []menutree.Item{}}
	if diff := cmp.Diff(want, item); diff != "" {
		t.Fatalf("item mismatch (-want +got):\n%s", diff)
	}
	items := tree.Items()
	if len(items) != 3 {
		t.Fatalf("root length = %d, want 3", len(items))
	}
	if diff := cmp.Diff(want, items[2]); diff != "" {
		t.Fatalf("last root mismatch (-want +got):\n%s", diff)
	}

	if _, err := tree.Add("B", menutree.Input{Name: "Under B", Link: "/b/under"}); err != nil {
		t.Fatalf("add child: %v", err)
	}
	if got := shape(tree.Items()); got != "A(A1) B(gen-2) gen-1" {
		t.Fatalf("shape = %q", got)
	}

	if _, err := tree.Add("A1", menutree.Input{Name: "Deep", Link: "/deep"}); !errors.Is(err, menutree.ErrTooDeep) {
		t.Fatalf("expected ErrTooDeep, got %v", err)
	}
	if _, err := tree.Add("missing", menutree.Input{Name: "Lost", Link: "/lost"}); !errors.Is(err, menutree.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name string
		opts []menutree.Option
		in   menutree.Input
		want menutree.ValidationErrors
	}{
		{
			name: "empty input",
			in:   menutree.Input{Name: "  "},
			want: menutree.ValidationErrors{"name": "name is required", "link": "link is required"},
		},
		{
			name: "short name",
			in:   menutree.Input{Name: "ab", Link: "/x"},
			want: menutree.ValidationErrors{"name": "name must be between 3 and 255 characters"},
		},
		{
			name: "long name",
			in:   menutree.Input{Name: strings.Repeat("n", 256), Link: "/x"},
			want: menutree.ValidationErrors{"name": "name must be between 3 and 255 characters"},
		},
		{
			name: "link min length",
			opts: []menutree.Option{menutree.WithLinkMinLength(5)},
			in:   menutree.Input{Name: "Home", Link: "/x"},
			want: menutree.ValidationErrors{"link": "link must be at least 5 characters"},
		},
		{
			name: "logo required",
			opts: []menutree.Option{menutree.WithRequireLogo(true)},
			in:   menutree.Input{Name: "Home", Link: "/"},
			want: menutree.ValidationErrors{"logo": "logo is required"},
		},
		{
			name: "logo markup with nothing drawable",
			in:   menutree.Input{Name: "Home", Link: "/", Logo: "<script>alert(1)</script>"},
			want: menutree.ValidationErrors{"logo": "logo markup contains no allowed SVG content"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := menutree.Load(nil, tt.opts...)
			_, err := tree.Add("", tt.in)
			var verr menutree.ValidationErrors
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if diff := cmp.Diff(tt.want, verr); diff != "" {
				t.Fatalf("errors mismatch (-want +got):\n%s", diff)
			}
			if tree.Len() != 0 {
				t.Fatalf("invalid add changed the tree")
			}
		})
	}
}

func TestEditAndRemove(t *testing.T) {
	tree := menutree.Load([]menutree.Item{withChildren("A", leaf("A1"), leaf("A2")), leaf("B")})

	got, err := tree.Edit("A2", menutree.Input{Name: " Docs ", Link: "/docs", Logo: "https://cdn.example.com/docs.svg"})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	want := menutree.Item{ID: "A2", Name: "Docs", Link: "/docs", Logo: "https://cdn.example.com/docs.svg", Children: []menutree.Item{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("edited item mismatch (-want +got):\n%s", diff)
	}
	if found, _ := tree.Find("A2"); found.Name != "Docs" {
		t.Fatalf("edit not applied in place: %+v", found)
	}
	if got := shape(tree.Items()); got != "A(A1,A2) B" {
		t.Fatalf("edit changed structure: %q", got)
	}

	if err := tree.Remove("A"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := shape(tree.Items()); got != "B" {
		t.Fatalf("shape = %q", got)
	}
	if _, ok := tree.Find("A1"); ok {
		t.Fatal("children must be removed with their parent")
	}
	if err := tree.Remove("A"); !errors.Is(err, menutree.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := tree.Edit("nope", menutree.Input{Name: "Name", Link: "/"}); !errors.Is(err, menutree.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadNormalises(t *testing.T) {
	tree := menutree.Load([]menutree.Item{
		{Name: "Legacy", Link: "/legacy", Children: []menutree.Item{
			{ID: "dup", Name: "Child", Link: "/child", Children: []menutree.Item{leaf("grandchild")}},
		}},
		{ID: "dup", Name: "Other", Link: "/other"},
	}, sequentialIDs())

	want := []menutree.Item{
		{ID: "gen-1", Name: "Legacy", Link: "/legacy", Children: []menutree.Item{
			{ID: "dup", Name: "Child", Link: "/child", Children: []menutree.Item{}},
		}},
		{ID: "gen-2", Name: "Other", Link: "/other", Children: []menutree.Item{}},
	}
	if diff := cmp.Diff(want, tree.Items()); diff != "" {
		t.Fatalf("loaded tree mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveAndItemsAreCopies(t *testing.T) {
	tree := menutree.Load([]menutree.Item{withChildren("A", leaf("A1")), leaf("B")})
	id, err := tree.Resolve(menutree.Position{Index: 0, Parent: 0})
	if err != nil || id != "A1" {
		t.Fatalf("resolve = %q, %v", id, err)
	}

	items := tree.Items()
	items[0].Children[0].Name = "mutated"
	if found, _ := tree.Find("A1"); found.Name != "A1" {
		t.Fatalf("Items must return a deep copy, tree saw %q", found.Name)
	}
}

func TestSanitizeLogo(t *testing.T) {
	raw := `<svg xmlns="http://www.w3.org/2000/svg" onload="alert(1)"><script>alert(1)</script><path d="M0 0h24v24H0z"/></svg>`
	got := menutree.SanitizeLogo(raw)
	if strings.Contains(got, "script") || strings.Contains(got, "onload") {
		t.Fatalf("unsafe markup kept: %s", got)
	}
	if !strings.Contains(got, `<path d="M0 0h24v24H0z"`) {
		t.Fatalf("drawing removed: %s", got)
	}
	if got := menutree.SanitizeLogo(" /img/logo.png "); got != "/img/logo.png" {
		t.Fatalf("reference logo = %q", got)
	}
}

func TestSanitizeLogoKeepsViewBox(t *testing.T) {
	got := menutree.SanitizeLogo(`<svg viewBox="0 0 24 24" width="24"><path d="M0 0h24v24H0z"/></svg>`)
	if !strings.Contains(got, ` viewBox="0 0 24 24"`) {
		t.Fatalf("viewBox not preserved: %s", got)
	}
	if strings.Contains(got, "viewbox") {
		t.Fatalf("lowercased attribute left: %s", got)
	}
}
