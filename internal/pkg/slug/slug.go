package slug

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalid = errors.New("slug may only contain lowercase letters, digits and single hyphens")

var pattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Normalize trims and lowercases raw and checks the result is a slug.
func Normalize(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if !pattern.MatchString(s) {
		return "", ErrInvalid
	}
	return s, nil
}
