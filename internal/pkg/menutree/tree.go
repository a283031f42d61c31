package menutree

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	nameMinLength = 3
	nameMaxLength = 255
)

// Tree is an ordered list of root items, each with at most one level of
// children. It is not safe for concurrent use.
type Tree struct {
	roots      []Item
	opts       options
	normalized bool
}

// Load builds a tree from persisted items. Items without an id (or with a
// duplicate one) get a fresh id; grandchildren are dropped.
func Load(items []Item, opts ...Option) *Tree {
	o := options{logger: zap.NewNop(), linkMinLength: 1, newID: func() string { return uuid.NewString() }}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	t := &Tree{roots: make([]Item, 0, len(items)), opts: o}
	seen := make(map[string]struct{})
	for _, root := range items {
		root = root.clone()
		t.ensureID(&root, seen)
		children := root.Children
		root.Children = make([]Item, 0, len(children))
		for _, child := range children {
			t.ensureID(&child, seen)
			if len(child.Children) > 0 {
				o.logger.Warn("menu item nested too deep, grandchildren dropped",
					zap.String("id", child.ID), zap.Int("dropped", len(child.Children)))
				t.normalized = true
			}
			child.Children = []Item{}
			root.Children = append(root.Children, child)
		}
		t.roots = append(t.roots, root)
	}
	return t
}

func (t *Tree) ensureID(it *Item, seen map[string]struct{}) {
	if _, dup := seen[it.ID]; it.ID == "" || dup {
		if it.ID != "" {
			t.opts.logger.Warn("duplicate menu item id, reassigned", zap.String("id", it.ID))
		}
		it.ID = t.opts.newID()
		t.normalized = true
	}
	seen[it.ID] = struct{}{}
}

// Normalized reports whether Load had to assign ids or drop grandchildren,
// i.e. whether Items differs from what was loaded.
func (t *Tree) Normalized() bool { return t.normalized }

// Items returns a deep copy of the tree for serialisation.
func (t *Tree) Items() []Item {
	out := make([]Item, 0, len(t.roots))
	for _, r := range t.roots {
		out = append(out, r.clone())
	}
	return out
}

// Len returns the number of root items.
func (t *Tree) Len() int { return len(t.roots) }

// Find returns a copy of the item with the given id.
func (t *Tree) Find(id string) (Item, bool) {
	p, ok := t.locate(id)
	if !ok {
		return Item{}, false
	}
	return t.at(p).clone(), true
}

// locate returns the position of id. Parent is Root for root items.
func (t *Tree) locate(id string) (Position, bool) {
	for i := range t.roots {
		if t.roots[i].ID == id {
			return Position{Index: i, Parent: Root}, true
		}
		for j := range t.roots[i].Children {
			if t.roots[i].Children[j].ID == id {
				return Position{Index: j, Parent: i}, true
			}
		}
	}
	return Position{}, false
}

func (t *Tree) at(p Position) *Item {
	if p.Parent == Root {
		return &t.roots[p.Index]
	}
	return &t.roots[p.Parent].Children[p.Index]
}

// Resolve turns a positional drag payload into the id of the item there.
func (t *Tree) Resolve(p Position) (string, error) {
	if p.Parent != Root && (p.Parent < 0 || p.Parent >= len(t.roots)) {
		return "", fmt.Errorf("%w: %s", ErrPosition, p)
	}
	list := t.roots
	if p.Parent != Root {
		list = t.roots[p.Parent].Children
	}
	if p.Index < 0 || p.Index >= len(list) {
		return "", fmt.Errorf("%w: %s", ErrPosition, p)
	}
	return list[p.Index].ID, nil
}

// Add validates in and appends a new item to the root list (parentID == "")
// or to the children of the root item parentID.
func (t *Tree) Add(parentID string, in Input) (Item, error) {
	in, err := t.validate(in)
	if err != nil {
		return Item{}, err
	}
	item := Item{ID: t.opts.newID(), Name: in.Name, Link: in.Link, Logo: in.Logo, Children: []Item{}}

	if parentID == "" {
		t.roots = append(t.roots, item)
		return item.clone(), nil
	}
	p, ok := t.locate(parentID)
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, parentID)
	}
	if p.Parent != Root {
		return Item{}, ErrTooDeep
	}
	t.roots[p.Index].Children = append(t.roots[p.Index].Children, item)
	return item.clone(), nil
}

// Edit replaces the name, link and logo of id in place.
func (t *Tree) Edit(id string, in Input) (Item, error) {
	p, ok := t.locate(id)
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	in, err := t.validate(in)
	if err != nil {
		return Item{}, err
	}
	it := t.at(p)
	it.Name, it.Link, it.Logo = in.Name, in.Link, in.Logo
	return it.clone(), nil
}

// Remove deletes id together with its children.
func (t *Tree) Remove(id string) error {
	p, ok := t.locate(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t.detach(p)
	return nil
}

func (t *Tree) detach(p Position) Item {
	if p.Parent == Root {
		it := t.roots[p.Index]
		t.roots = append(t.roots[:p.Index], t.roots[p.Index+1:]...)
		return it
	}
	children := t.roots[p.Parent].Children
	it := children[p.Index]
	t.roots[p.Parent].Children = append(children[:p.Index], children[p.Index+1:]...)
	return it
}

// Move relocates the item at src so that it ends up at dst.Index inside the
// collection owned by dst.Parent. dst.Index is read after the item has been
// removed and is clamped to the collection length. Dropping an item that has
// children onto a child slot, or an item into its own children, leaves the
// tree untouched and reports false.
func (t *Tree) Move(src, dst Position) (bool, error) {
	srcID, err := t.Resolve(src)
	if err != nil {
		return false, err
	}
	if dst.Index < 0 {
		return false, fmt.Errorf("%w: %s", ErrPosition, dst)
	}
	destParentID := ""
	if dst.Parent != Root {
		if dst.Parent < 0 || dst.Parent >= len(t.roots) {
			return false, fmt.Errorf("%w: %s", ErrPosition, dst)
		}
		destParentID = t.roots[dst.Parent].ID
	}

	if destParentID != "" {
		if destParentID == srcID || len(t.at(src).Children) > 0 {
			return false, nil
		}
	}

	item := t.detach(src)
	if destParentID == "" {
		t.roots = insertAt(t.roots, dst.Index, item)
		return true, nil
	}
	parent, _ := t.locate(destParentID)
	owner := &t.roots[parent.Index]
	owner.Children = insertAt(owner.Children, dst.Index, item)
	return true, nil
}

func insertAt(list []Item, at int, it Item) []Item {
	if at > len(list) {
		at = len(list)
	}
	list = append(list, Item{})
	copy(list[at+1:], list[at:])
	list[at] = it
	return list
}

func (t *Tree) validate(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Link = strings.TrimSpace(in.Link)
	in.Logo = strings.TrimSpace(in.Logo)

	errs := ValidationErrors{}
	if n := utf8.RuneCountInString(in.Name); n == 0 {
		errs["name"] = "name is required"
	} else if n < nameMinLength || n > nameMaxLength {
		errs["name"] = fmt.Sprintf("name must be between %d and %d characters", nameMinLength, nameMaxLength)
	}
	if n := utf8.RuneCountInString(in.Link); n == 0 {
		errs["link"] = "link is required"
	} else if n < t.opts.linkMinLength {
		errs["link"] = fmt.Sprintf("link must be at least %d characters", t.opts.linkMinLength)
	}
	if in.Logo != "" {
		in.Logo = SanitizeLogo(in.Logo)
		if in.Logo == "" {
			errs["logo"] = "logo markup contains no allowed SVG content"
		}
	} else if t.opts.requireLogo {
		errs["logo"] = "logo is required"
	}

	if len(errs) > 0 {
		return in, errs
	}
	return in, nil
}
