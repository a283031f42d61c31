package menutree

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	logoPolicyOnce sync.Once
	logoPolicy     *bluemonday.Policy
)

// SanitizeLogo keeps a logo reference as is and strips inline SVG markup
// down to drawing elements. It returns "" when nothing drawable is left.
func SanitizeLogo(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !strings.HasPrefix(trimmed, "<") {
		return trimmed
	}
	out := strings.TrimSpace(logoSanitizer().Sanitize(trimmed))
	// SVG attribute names are case sensitive; the HTML tokenizer lowercases them.
	return svgAttrCase.Replace(out)
}

var svgAttrCase = strings.NewReplacer(" viewbox=", " viewBox=")

func logoSanitizer() *bluemonday.Policy {
	logoPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		shapes := []string{"path", "circle", "rect", "line", "polyline", "polygon", "ellipse"}
		policy.AllowElements(append([]string{"svg", "g", "title", "desc", "defs"}, shapes...)...)

		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "aria-hidden", "role", "focusable", "class",
		).OnElements("svg")
		policy.AllowAttrs("fill", "stroke", "transform").OnElements("g")
		policy.AllowAttrs(
			"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
			"points", "rx", "ry", "fill", "stroke", "stroke-width",
			"stroke-linecap", "stroke-linejoin", "fill-rule", "clip-rule",
		).OnElements(shapes...)

		logoPolicy = policy
	})
	return logoPolicy
}
