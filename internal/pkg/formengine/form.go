package formengine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	ErrUnknownField    = errors.New("formengine: unknown field")
	ErrUnknownSubField = errors.New("formengine: unknown sub-field")
	ErrNotGroup        = errors.New("formengine: field is not a repeatable group")
	ErrNotScalar       = errors.New("formengine: field is a repeatable group")
	ErrEntryIndex      = errors.New("formengine: entry index out of range")
)

// Form owns the value tree of one section schema while it is being edited.
// It is not safe for concurrent use.
type Form struct {
	schema  *Schema
	values  ValueTree
	keepOne bool
	logger  *zap.Logger
}

// NewForm hydrates a form from initial (nil for add mode). Values are
// copied; keys unknown to the schema are kept untouched.
func NewForm(schema *Schema, initial ValueTree, opts ...Option) *Form {
	o := applyOptions(opts)
	f := &Form{
		schema:  schema,
		values:  initial.Clone(),
		keepOne: o.keepOneEntry,
		logger:  o.logger,
	}
	for _, field := range schema.fields {
		f.hydrate(field)
	}
	return f
}

func (f *Form) hydrate(field Field) {
	key := field.Key()
	current, ok := f.values[key]

	switch fd := field.(type) {
	case *Scalar:
		if ok && current.IsGroup {
			f.logger.Warn("group value bound to scalar field, reset", zap.String("field", key))
			ok = false
		}
		if ok && current.Raw != nil {
			if current.Text == "" {
				f.logger.Warn("structured value bound to scalar field, reset", zap.String("field", key))
			}
			current = TextValue(current.Text)
			f.values[key] = current
		}
		if !ok {
			f.values[key] = TextValue("")
		}
	case *Repeatable:
		if ok && !current.IsGroup {
			f.logger.Warn("scalar value bound to group field, reset", zap.String("field", key))
			ok = false
		}
		if !ok {
			current = GroupValue()
		}
		for i, entry := range current.Entries {
			if entry == nil {
				entry = Entry{}
			}
			for _, sub := range fd.Fields {
				if _, has := entry[sub.Key()]; !has {
					entry[sub.Key()] = ""
				}
			}
			current.Entries[i] = entry
		}
		if f.keepOne && len(current.Entries) == 0 {
			current.Entries = append(current.Entries, fd.BlankEntry())
		}
		f.values[key] = current
	}
}

// Schema returns the compiled schema backing the form.
func (f *Form) Schema() *Schema { return f.schema }

// Values returns a copy of the accumulated value tree.
func (f *Form) Values() ValueTree { return f.values.Clone() }

// SetValue writes a scalar field.
func (f *Form) SetValue(key, value string) error {
	field, ok := f.schema.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	if _, ok := field.(*Scalar); !ok {
		return fmt.Errorf("%w: %s", ErrNotScalar, key)
	}
	f.values[key] = TextValue(value)
	return nil
}

// SetEntryValue writes sub-field subKey of the entry at index in group key.
func (f *Form) SetEntryValue(key string, index int, subKey, value string) error {
	group, entries, err := f.group(key)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("%w: %s[%d]", ErrEntryIndex, key, index)
	}
	if _, ok := group.Sub(subKey); !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownSubField, key, subKey)
	}
	entries[index][subKey] = value
	return nil
}

// EntryCount returns the number of entries in group key.
func (f *Form) EntryCount(key string) (int, error) {
	_, entries, err := f.group(key)
	return len(entries), err
}

// InsertEntry inserts a blank entry at position at (0..len). Entries from at
// onwards shift up by one.
func (f *Form) InsertEntry(key string, at int) error {
	group, entries, err := f.group(key)
	if err != nil {
		return err
	}
	if at < 0 || at > len(entries) {
		return fmt.Errorf("%w: %s[%d]", ErrEntryIndex, key, at)
	}
	entries = append(entries, nil)
	copy(entries[at+1:], entries[at:])
	entries[at] = group.BlankEntry()
	f.values[key] = Value{Entries: entries, IsGroup: true}
	return nil
}

// InsertAfter inserts a blank entry directly after the entry at index.
func (f *Form) InsertAfter(key string, index int) error {
	_, entries, err := f.group(key)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("%w: %s[%d]", ErrEntryIndex, key, index)
	}
	return f.InsertEntry(key, index+1)
}

// Prepend inserts a blank entry at the first position.
func (f *Form) Prepend(key string) error { return f.InsertEntry(key, 0) }

// RemoveEntry deletes the entry at index. It reports false without error
// when the form keeps one entry and index addresses the only one left.
func (f *Form) RemoveEntry(key string, index int) (bool, error) {
	_, entries, err := f.group(key)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(entries) {
		return false, fmt.Errorf("%w: %s[%d]", ErrEntryIndex, key, index)
	}
	if f.keepOne && len(entries) == 1 {
		return false, nil
	}
	entries = append(entries[:index], entries[index+1:]...)
	f.values[key] = Value{Entries: entries, IsGroup: true}
	return true, nil
}

func (f *Form) group(key string) (*Repeatable, []Entry, error) {
	field, ok := f.schema.Lookup(key)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	group, ok := field.(*Repeatable)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotGroup, key)
	}
	return group, f.values[key].Entries, nil
}

// Payload is what the host persists after a successful submit.
type Payload struct {
	ContentBlockID   string    `json:"contentBlockId"`
	ContentBlockData ValueTree `json:"contentBlockData"`
}

// ValidationError carries the error tree of a rejected submit.
type ValidationError struct {
	Errors ErrorTree
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("formengine: %d field(s) failed validation", e.Errors.Count())
}

// Submit validates the form and returns the payload when no field failed.
// The value tree is handed over exactly as accumulated.
func (f *Form) Submit() (Payload, error) {
	if errs := f.Validate(); !errs.Empty() {
		return Payload{}, &ValidationError{Errors: errs}
	}
	return Payload{ContentBlockID: f.schema.ID, ContentBlockData: f.Values()}, nil
}
