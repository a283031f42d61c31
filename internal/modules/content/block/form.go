package block

import (
	"context"

	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/changes"
	"github.com/pagecraft/core/internal/pkg/formengine"
)

// session is a block form rebuilt for one request from the draft store, or
// from the persisted value tree when no draft exists.
type session struct {
	block *models.ContentBlockModel
	form  *formengine.Form
	draft bool
	key   string
}

func (s *Service) open(ctx context.Context, ac access.Context, id string) (*session, error) {
	block, err := s.repo.Get(ctx, ac.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, errBlockNotFound
	}
	schema, err := s.schemas.Compiled(ctx, ac.OrganizationID, block.ContentBlockID)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, errSectionNotFound
	}

	key := draftKey(ac, id)
	values := block.ContentBlockData
	var saved formengine.ValueTree
	found, err := s.drafts.Load(ctx, key, &saved)
	if err != nil {
		return nil, err
	}
	if found {
		values = saved
	}
	return &session{
		block: block,
		form:  formengine.NewForm(schema, values, s.schemas.FormOptions()...),
		draft: found,
		key:   key,
	}, nil
}

func (ss *session) view() *FormView {
	return &FormView{
		BlockID:   ss.block.ID,
		SectionID: ss.block.ContentBlockID,
		Draft:     ss.draft,
		Controls:  ss.form.Render(formengine.ErrorTree{}),
		Values:    ss.form.Values(),
	}
}

// edit applies fn to the block's form and keeps the result as the draft.
func (s *Service) edit(ctx context.Context, ac access.Context, id string, fn func(*formengine.Form) error) (*FormView, error) {
	ss, err := s.open(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	if err := fn(ss.form); err != nil {
		return nil, err
	}
	if err := s.drafts.Save(ctx, ss.key, ss.form.Values()); err != nil {
		return nil, err
	}
	ss.draft = true
	return ss.view(), nil
}

// Form returns the controls of the block form bound to the current draft.
func (s *Service) Form(ctx context.Context, ac access.Context, id string) (*FormView, error) {
	ss, err := s.open(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	return ss.view(), nil
}

func (s *Service) SetField(ctx context.Context, ac access.Context, id, key, value string) (*FormView, error) {
	return s.edit(ctx, ac, id, func(f *formengine.Form) error {
		return f.SetValue(key, value)
	})
}

func (s *Service) SetEntryField(ctx context.Context, ac access.Context, id, key string, index int, subKey, value string) (*FormView, error) {
	return s.edit(ctx, ac, id, func(f *formengine.Form) error {
		return f.SetEntryValue(key, index, subKey, value)
	})
}

// InsertEntry adds a blank entry to group key at position at; a negative at
// appends.
func (s *Service) InsertEntry(ctx context.Context, ac access.Context, id, key string, at int) (*FormView, error) {
	return s.edit(ctx, ac, id, func(f *formengine.Form) error {
		if at < 0 {
			n, err := f.EntryCount(key)
			if err != nil {
				return err
			}
			at = n
		}
		return f.InsertEntry(key, at)
	})
}

func (s *Service) InsertEntryAfter(ctx context.Context, ac access.Context, id, key string, index int) (*FormView, error) {
	return s.edit(ctx, ac, id, func(f *formengine.Form) error {
		return f.InsertAfter(key, index)
	})
}

func (s *Service) RemoveEntry(ctx context.Context, ac access.Context, id, key string, index int) (*FormView, error) {
	return s.edit(ctx, ac, id, func(f *formengine.Form) error {
		_, err := f.RemoveEntry(key, index)
		return err
	})
}

// SubmitForm validates the draft and persists it. A rejected submit leaves
// the draft in place and returns *formengine.ValidationError.
func (s *Service) SubmitForm(ctx context.Context, ac access.Context, id string) (*models.ContentBlockModel, error) {
	ss, err := s.open(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	payload, err := ss.form.Submit()
	if err != nil {
		return nil, err
	}
	ss.block.ContentBlockData = payload.ContentBlockData
	if err := s.repo.Update(ctx, ss.block); err != nil {
		return nil, err
	}
	if err := s.drafts.Delete(ctx, ss.key); err != nil {
		return nil, err
	}
	s.notify(ctx, changes.ActionUpdate, ss.block)
	return ss.block, nil
}

// DiscardForm drops the draft; the persisted value tree is untouched.
func (s *Service) DiscardForm(ctx context.Context, ac access.Context, id string) error {
	block, err := s.repo.Get(ctx, ac.OrganizationID, id)
	if err != nil {
		return err
	}
	if block == nil {
		return errBlockNotFound
	}
	return s.drafts.Delete(ctx, draftKey(ac, id))
}
