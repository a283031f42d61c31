package block

import (
	"context"
	"html"

	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/formengine"
	"github.com/pagecraft/core/internal/pkg/markdown"
)

// Preview renders the block's current draft, or its persisted value tree,
// as display HTML.
func (s *Service) Preview(ctx context.Context, ac access.Context, id string) (*Preview, error) {
	ss, err := s.open(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	values := ss.form.Values()
	out := &Preview{BlockID: ss.block.ID, Draft: ss.draft, Fields: []PreviewField{}}
	for _, field := range ss.form.Schema().Fields() {
		switch fd := field.(type) {
		case *formengine.Scalar:
			pf, err := previewScalar(fd, values[fd.Key()].Text)
			if err != nil {
				return nil, err
			}
			out.Fields = append(out.Fields, pf)
		case *formengine.Repeatable:
			def := fd.Definition()
			group := PreviewField{Key: def.FeKey, Label: def.FieldLabel, Type: string(formengine.FieldMultiple), Entries: [][]PreviewField{}}
			for _, entry := range values[fd.Key()].Entries {
				row := make([]PreviewField, 0, len(fd.Fields))
				for _, sub := range fd.Fields {
					pf, err := previewScalar(sub, entry[sub.Key()])
					if err != nil {
						return nil, err
					}
					row = append(row, pf)
				}
				group.Entries = append(group.Entries, row)
			}
			out.Fields = append(out.Fields, group)
		}
	}
	return out, nil
}

func previewScalar(s *formengine.Scalar, value string) (PreviewField, error) {
	def := s.Definition()
	pf := PreviewField{Key: def.FeKey, Label: def.FieldLabel, Type: string(def.FieldType)}
	if value == "" {
		return pf, nil
	}
	escaped := html.EscapeString(value)
	switch def.FieldType {
	case formengine.FieldTextarea:
		rendered, err := markdown.Render(value)
		if err != nil {
			return pf, err
		}
		pf.HTML = rendered
	case formengine.FieldURL:
		pf.HTML = markdown.Sanitize(`<a href="` + escaped + `">` + escaped + `</a>`)
	case formengine.FieldEmail:
		pf.HTML = markdown.Sanitize(`<a href="mailto:` + escaped + `">` + escaped + `</a>`)
	default:
		pf.HTML = escaped
	}
	return pf, nil
}
