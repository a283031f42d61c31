package formengine

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/mail"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MsgRequired = "required"
	MsgPattern  = "does not match the requested format"
	MsgEmail    = "must be a valid email address"
	MsgURL      = "must be a valid URL"
	MsgNumber   = "must be a number"
	MsgDate     = "must be a date (YYYY-MM-DD)"
	MsgAccept   = "file type is not accepted"
)

const dateLayout = "2006-01-02"

// EntryErrors maps sub-field feKey to its message for one entry.
type EntryErrors map[string]string

// ErrorTree holds validation messages keyed exactly like the value tree.
type ErrorTree struct {
	Fields map[string]string
	// Groups holds, per group key, one EntryErrors per entry (empty when
	// that entry passed). Only groups with at least one failure appear.
	Groups map[string][]EntryErrors
}

// Empty reports whether no field failed.
func (e ErrorTree) Empty() bool { return len(e.Fields) == 0 && len(e.Groups) == 0 }

// Count returns the number of failing slots.
func (e ErrorTree) Count() int {
	n := len(e.Fields)
	for _, entries := range e.Groups {
		for _, entry := range entries {
			n += len(entry)
		}
	}
	return n
}

// Field returns the message of a top-level scalar field.
func (e ErrorTree) Field(key string) string { return e.Fields[key] }

// Entry returns the message of a sub-field slot.
func (e ErrorTree) Entry(key string, index int, subKey string) string {
	entries := e.Groups[key]
	if index < 0 || index >= len(entries) {
		return ""
	}
	return entries[index][subKey]
}

func (e ErrorTree) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(e.Fields)+len(e.Groups))
	for k, msg := range e.Fields {
		out[k] = msg
	}
	for k, entries := range e.Groups {
		out[k] = entries
	}
	return json.Marshal(out)
}

// Validate checks every field against its rules and returns the error tree.
func (f *Form) Validate() ErrorTree {
	var errs ErrorTree
	for _, field := range f.schema.fields {
		switch fd := field.(type) {
		case *Scalar:
			if msg := fd.Check(f.values[fd.Key()].Text); msg != "" {
				if errs.Fields == nil {
					errs.Fields = map[string]string{}
				}
				errs.Fields[fd.Key()] = msg
			}
		case *Repeatable:
			entries := f.values[fd.Key()].Entries
			rows := make([]EntryErrors, len(entries))
			failed := false
			for i, entry := range entries {
				rows[i] = EntryErrors{}
				for _, sub := range fd.Fields {
					if msg := sub.Check(entry[sub.Key()]); msg != "" {
						rows[i][sub.Key()] = msg
						failed = true
					}
				}
			}
			if failed {
				if errs.Groups == nil {
					errs.Groups = map[string][]EntryErrors{}
				}
				errs.Groups[fd.Key()] = rows
			}
		}
	}
	return errs
}

// Check returns the first failing rule's message for value, or "".
func (s *Scalar) Check(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if s.Required() {
			return MsgRequired
		}
		return ""
	}

	r := s.Rules
	length := utf8.RuneCountInString(value)
	if r.MinLength != nil && length < *r.MinLength {
		return fmt.Sprintf("must be at least %d characters", *r.MinLength)
	}
	if r.MaxLength != nil && length > *r.MaxLength {
		return fmt.Sprintf("must be at most %d characters", *r.MaxLength)
	}
	if r.Pattern != nil && !r.Pattern.MatchString(value) {
		return MsgPattern
	}

	switch s.Def.FieldType {
	case FieldEmail:
		if addr, err := mail.ParseAddress(trimmed); err != nil || addr.Address != trimmed {
			return MsgEmail
		}
	case FieldURL:
		if u, err := url.ParseRequestURI(trimmed); err != nil || u.Scheme == "" || u.Host == "" {
			return MsgURL
		}
	case FieldNumber:
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return MsgNumber
		}
		if lo, err := strconv.ParseFloat(r.Min, 64); err == nil && n < lo {
			return "must be at least " + r.Min
		}
		if hi, err := strconv.ParseFloat(r.Max, 64); err == nil && n > hi {
			return "must be at most " + r.Max
		}
	case FieldDate:
		if _, err := time.Parse(dateLayout, trimmed); err != nil {
			return MsgDate
		}
		if r.Min != "" && trimmed < r.Min {
			return "must be on or after " + r.Min
		}
		if r.Max != "" && trimmed > r.Max {
			return "must be on or before " + r.Max
		}
	case FieldFile:
		if len(r.Accept) > 0 && !accepts(r.Accept, trimmed) {
			return MsgAccept
		}
	}
	return ""
}

// accepts applies an HTML accept list (".ext", "type/*", "type/sub") to a
// file name or URL.
func accepts(accept []string, value string) bool {
	name := value
	if u, err := url.Parse(value); err == nil && u.Path != "" {
		name = u.Path
	}
	ext := strings.ToLower(path.Ext(name))
	mimeType := ""
	if ext != "" {
		mimeType, _, _ = mime.ParseMediaType(mime.TypeByExtension(ext))
	}

	for _, token := range accept {
		switch {
		case strings.HasPrefix(token, "."):
			if ext == token {
				return true
			}
		case strings.HasSuffix(token, "/*"):
			if mimeType != "" && strings.HasPrefix(mimeType, strings.TrimSuffix(token, "*")) {
				return true
			}
		default:
			if mimeType != "" && mimeType == token {
				return true
			}
		}
	}
	return false
}
