package formengine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Field is a compiled schema slot: either a *Scalar or a *Repeatable.
type Field interface {
	Key() string
	Definition() FieldDefinition
	field()
}

// Scalar is a single input bound to one string value.
type Scalar struct {
	Def   FieldDefinition
	Rules Constraints
}

func (s *Scalar) Key() string                 { return s.Def.FeKey }
func (s *Scalar) Definition() FieldDefinition { return s.Def }
func (*Scalar) field()                        {}

// Required reports whether an empty value fails validation.
func (s *Scalar) Required() bool { return s.Def.IsRequired || s.Rules.Required }

// Repeatable is a group of scalar sub-fields edited as an ordered entry list.
type Repeatable struct {
	Def    FieldDefinition
	Fields []*Scalar
}

func (r *Repeatable) Key() string                 { return r.Def.FeKey }
func (r *Repeatable) Definition() FieldDefinition { return r.Def }
func (*Repeatable) field()                        {}

// Sub returns the sub-field with the given key.
func (r *Repeatable) Sub(key string) (*Scalar, bool) {
	for _, f := range r.Fields {
		if f.Key() == key {
			return f, true
		}
	}
	return nil, false
}

// BlankEntry returns an entry with every sub-field set to "".
func (r *Repeatable) BlankEntry() Entry {
	entry := make(Entry, len(r.Fields))
	for _, f := range r.Fields {
		entry[f.Key()] = ""
	}
	return entry
}

// Warning describes a schema problem that was tolerated during Compile.
type Warning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (w Warning) String() string { return w.Path + ": " + w.Message }

// Schema is a compiled, read-only section schema.
type Schema struct {
	ID     string
	fields []Field
	index  map[string]Field
}

// Fields returns the compiled fields in schema order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Lookup returns the top-level field with the given key.
func (s *Schema) Lookup(key string) (Field, bool) {
	f, ok := s.index[key]
	return f, ok
}

// Compile parses every validation rule set once and builds the typed field
// list. Problems never abort compilation; they are returned as warnings and
// logged.
func Compile(id string, defs []FieldDefinition, opts ...Option) (*Schema, []Warning) {
	o := applyOptions(opts)
	c := compiler{logger: o.logger}

	schema := &Schema{ID: id, index: make(map[string]Field, len(defs))}
	for i, def := range defs {
		path := fmt.Sprintf("[%d]", i)
		key := strings.TrimSpace(def.FeKey)
		if key == "" {
			c.warn(path, "field has no feKey, skipped")
			continue
		}
		if _, dup := schema.index[key]; dup {
			c.warn(key, "duplicate feKey, skipped")
			continue
		}
		def.FeKey = key

		var f Field
		if def.FieldType == FieldMultiple {
			f = c.repeatable(def)
		} else {
			f = c.scalar(key, def)
		}
		schema.fields = append(schema.fields, f)
		schema.index[key] = f
	}
	return schema, c.warnings
}

type compiler struct {
	logger   *zap.Logger
	warnings []Warning
}

func (c *compiler) warn(path, msg string) {
	c.warnings = append(c.warnings, Warning{Path: path, Message: msg})
	c.logger.Warn("section schema warning", zap.String("path", path), zap.String("message", msg))
}

func (c *compiler) scalar(path string, def FieldDefinition) *Scalar {
	if !def.FieldType.Known() {
		c.warn(path, fmt.Sprintf("unknown fieldType %q, treated as text", def.FieldType))
		def.FieldType = FieldText
	}
	def.MultipleData = nil
	rules, err := ParseConstraints(def.Validation)
	if err != nil {
		c.warn(path, err.Error())
	}
	return &Scalar{Def: def, Rules: rules}
}

func (c *compiler) repeatable(def FieldDefinition) *Repeatable {
	r := &Repeatable{Def: def}
	seen := make(map[string]struct{}, len(def.MultipleData))
	for i, sub := range def.MultipleData {
		path := fmt.Sprintf("%s[%d]", def.FeKey, i)
		key := strings.TrimSpace(sub.FeKey)
		if key == "" {
			c.warn(path, "sub-field has no feKey, skipped")
			continue
		}
		path = def.FeKey + "." + key
		if _, dup := seen[key]; dup {
			c.warn(path, "duplicate feKey, skipped")
			continue
		}
		if sub.FieldType == FieldMultiple {
			c.warn(path, "nested multiple fields are not supported, skipped")
			continue
		}
		seen[key] = struct{}{}
		sub.FeKey = key
		r.Fields = append(r.Fields, c.scalar(path, sub))
	}
	return r
}
