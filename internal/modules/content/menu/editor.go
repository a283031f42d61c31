package menu

import (
	"context"

	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/changes"
	"github.com/pagecraft/core/internal/pkg/menutree"
)

// session is the menu tree of one editor request, rebuilt from the draft
// store or from the persisted tree when no draft exists.
type session struct {
	menu  *models.MenuModel
	tree  *menutree.Tree
	draft bool
	key   string
}

func (s *Service) open(ctx context.Context, ac access.Context, id string) (*session, error) {
	m, err := s.repo.Get(ctx, ac.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errMenuNotFound
	}
	key := draftKey(ac, id)
	items := m.MenuJSONData
	var saved []menutree.Item
	found, err := s.drafts.Load(ctx, key, &saved)
	if err != nil {
		return nil, err
	}
	if found {
		items = saved
	}
	ss := &session{menu: m, tree: s.load(items), draft: found, key: key}
	// Ids assigned during load must survive until the next request.
	if ss.tree.Normalized() {
		if err := s.keep(ctx, ss); err != nil {
			return nil, err
		}
	}
	return ss, nil
}

func (ss *session) view() EditorView {
	return EditorView{
		MenuID:  ss.menu.ID,
		Created: ss.menu.MenuJSONData != nil,
		Draft:   ss.draft,
		Items:   ss.tree.Items(),
	}
}

func (s *Service) keep(ctx context.Context, ss *session) error {
	if err := s.drafts.Save(ctx, ss.key, ss.tree.Items()); err != nil {
		return err
	}
	ss.draft = true
	return nil
}

// Editor returns the current draft tree, or the persisted one.
func (s *Service) Editor(ctx context.Context, ac access.Context, id string) (*EditorView, error) {
	ss, err := s.open(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	v := ss.view()
	return &v, nil
}

// AddItem appends a validated item to the root list or to the children of
// parentID. Failed validation returns menutree.ValidationErrors.
func (s *Service) AddItem(ctx context.Context, ac access.Context, id, parentID string, in menutree.Input) (*ItemResult, error) {
	ss, err := s.open(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	item, err := ss.tree.Add(parentID, in)
	if err != nil {
		return nil, err
	}
	if err := s.keep(ctx, ss); err != nil {
		return nil, err
	}
	return &ItemResult{Item: item, EditorView: ss.view()}, nil
}

func (s *Service) EditItem(ctx context.Context, ac access.Context, id, itemID string, in menutree.Input) (*ItemResult, error) {
	ss, err := s.open(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	item, err := ss.tree.Edit(itemID, in)
	if err != nil {
		return nil, err
	}
	if err := s.keep(ctx, ss); err != nil {
		return nil, err
	}
	return &ItemResult{Item: item, EditorView: ss.view()}, nil
}

func (s *Service) RemoveItem(ctx context.Context, ac access.Context, id, itemID string) (*EditorView, error) {
	ss, err := s.open(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	if err := ss.tree.Remove(itemID); err != nil {
		return nil, err
	}
	if err := s.keep(ctx, ss); err != nil {
		return nil, err
	}
	v := ss.view()
	return &v, nil
}

// Move applies a drag from src to dst. A move the tree refuses leaves the
// draft untouched and reports Moved == false.
func (s *Service) Move(ctx context.Context, ac access.Context, id string, src, dst menutree.Position) (*MoveResult, error) {
	ss, err := s.open(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	moved, err := ss.tree.Move(src, dst)
	if err != nil {
		return nil, err
	}
	if moved {
		if err := s.keep(ctx, ss); err != nil {
			return nil, err
		}
	}
	return &MoveResult{Moved: moved, EditorView: ss.view()}, nil
}

// Save persists the whole tree and drops the draft. On a write failure the
// draft is left in place so the save can be retried.
func (s *Service) Save(ctx context.Context, ac access.Context, id string) (*SaveResult, error) {
	ss, err := s.open(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	ss.menu.MenuJSONData = ss.tree.Items()
	if err := s.repo.SaveTree(ctx, ss.menu); err != nil {
		return nil, err
	}
	if err := s.drafts.Delete(ctx, ss.key); err != nil {
		return nil, err
	}
	s.notify(ctx, changes.ActionUpdate, ss.menu)
	return &SaveResult{MenuID: ss.menu.ID, MenuJSONData: ss.menu.MenuJSONData}, nil
}

// Discard drops the draft; the persisted tree is untouched.
func (s *Service) Discard(ctx context.Context, ac access.Context, id string) error {
	m, err := s.repo.Get(ctx, ac.OrganizationID, id)
	if err != nil {
		return err
	}
	if m == nil {
		return errMenuNotFound
	}
	return s.drafts.Delete(ctx, draftKey(ac, id))
}
