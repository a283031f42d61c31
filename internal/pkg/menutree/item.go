// Package menutree holds a two-level navigation tree and the edit and
// drag-reorder operations the menu editor performs on it.
package menutree

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Item is a menu entry. Root items may have children; children never do.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Link     string `json:"link"`
	Logo     string `json:"logo,omitempty"`
	Children []Item `json:"children"`
}

func (it Item) clone() Item {
	out := it
	out.Children = make([]Item, 0, len(it.Children))
	for _, c := range it.Children {
		out.Children = append(out.Children, c.clone())
	}
	return out
}

// Input is the editable part of an item as submitted by the add/edit drawer.
type Input struct {
	Name string `json:"name"`
	Link string `json:"link"`
	Logo string `json:"logo"`
}

// Root marks a Position on the root list.
const Root = -1

// Position is the transient drag payload: Index within the collection owned
// by the root item at Parent, or within the root list when Parent is Root.
type Position struct {
	Index  int `json:"index"`
	Parent int `json:"parentIndex"`
}

func (p Position) String() string {
	if p.Parent == Root {
		return fmt.Sprintf("root[%d]", p.Index)
	}
	return fmt.Sprintf("root[%d].children[%d]", p.Parent, p.Index)
}

var (
	ErrNotFound = errors.New("menutree: item not found")
	ErrPosition = errors.New("menutree: position out of range")
	ErrTooDeep  = errors.New("menutree: children can not have children")
)

// ValidationErrors maps an input field name to its message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "menutree: invalid item (" + strings.Join(parts, ", ") + ")"
}
