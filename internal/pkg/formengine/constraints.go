package formengine

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Constraints is the parsed form of a field's validation string. Zero value
// means no constraint beyond the field's own isRequired flag.
type Constraints struct {
	Required      bool
	PatternSource string
	Pattern       *regexp.Regexp
	MinLength     *int
	MaxLength     *int
	Min           string
	Max           string
	Accept        []string
}

var errValidationNotObject = errors.New("validation must be a JSON object")

// ParseConstraints decodes a JSON-encoded rule set. An empty string yields
// zero constraints. A rule that fails to parse is dropped and reported in
// the returned error; the remaining rules are still returned.
func ParseConstraints(raw string) (Constraints, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Constraints{}, nil
	}

	var rules map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return Constraints{}, fmt.Errorf("parse validation: %w", err)
	}
	if rules == nil {
		return Constraints{}, errValidationNotObject
	}

	var (
		c    Constraints
		errs []error
	)
	for _, name := range sortedRuleNames(rules) {
		value := rules[name]
		var err error
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "required":
			var required bool
			if required, err = ruleBool(value); err == nil {
				c.Required = required
			}
		case "pattern":
			source := scalarString(value)
			if source == "" {
				break
			}
			// Native pattern attributes must match the whole value.
			var re *regexp.Regexp
			if re, err = regexp.Compile("^(?:" + source + ")$"); err == nil {
				c.PatternSource, c.Pattern = source, re
			}
		case "minlength":
			var n *int
			if n, err = ruleLength(value); err == nil {
				c.MinLength = n
			}
		case "maxlength":
			var n *int
			if n, err = ruleLength(value); err == nil {
				c.MaxLength = n
			}
		case "min":
			c.Min = strings.TrimSpace(scalarString(value))
		case "max":
			c.Max = strings.TrimSpace(scalarString(value))
		case "accept":
			var accept []string
			if accept, err = ruleAccept(value); err == nil {
				c.Accept = accept
			}
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("validation rule %q: %w", name, err))
		}
	}
	return c, errors.Join(errs...)
}

func sortedRuleNames(rules map[string]json.RawMessage) []string {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Attrs returns the native input attributes that mirror the constraints.
func (c Constraints) Attrs() map[string]string {
	attrs := map[string]string{}
	if c.PatternSource != "" {
		attrs["pattern"] = c.PatternSource
	}
	if c.MinLength != nil {
		attrs["minlength"] = strconv.Itoa(*c.MinLength)
	}
	if c.MaxLength != nil {
		attrs["maxlength"] = strconv.Itoa(*c.MaxLength)
	}
	if c.Min != "" {
		attrs["min"] = c.Min
	}
	if c.Max != "" {
		attrs["max"] = c.Max
	}
	if len(c.Accept) > 0 {
		attrs["accept"] = strings.Join(c.Accept, ",")
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

func ruleBool(raw json.RawMessage) (bool, error) {
	s := strings.ToLower(strings.TrimSpace(scalarString(raw)))
	if s == "" || s == "required" {
		return s == "required", nil
	}
	return strconv.ParseBool(s)
}

func ruleLength(raw json.RawMessage) (*int, error) {
	s := strings.TrimSpace(scalarString(raw))
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("negative length %d", n)
	}
	return &n, nil
}

func ruleAccept(raw json.RawMessage) ([]string, error) {
	var list []string
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
	} else {
		list = strings.Split(scalarString(raw), ",")
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
