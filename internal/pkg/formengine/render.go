package formengine

// Control is the render descriptor of one input or repeatable group. The
// admin UI draws controls in order; attribute values are advisory.
type Control struct {
	Key      string            `json:"key"`
	Label    string            `json:"label"`
	Type     FieldType         `json:"type"`
	Required bool              `json:"required"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Value    string            `json:"value"`
	Error    string            `json:"error,omitempty"`
	// Template and Entries are only set for repeatable groups.
	Template []Control   `json:"template,omitempty"`
	Entries  [][]Control `json:"entries,omitempty"`
}

// Render returns the controls of the form bound to its current values and
// to errs (pass a zero ErrorTree before the first submit).
func (f *Form) Render(errs ErrorTree) []Control {
	controls := make([]Control, 0, len(f.schema.fields))
	for _, field := range f.schema.fields {
		switch fd := field.(type) {
		case *Scalar:
			controls = append(controls, scalarControl(fd, f.values[fd.Key()].Text, errs.Field(fd.Key())))
		case *Repeatable:
			def := fd.Definition()
			group := Control{
				Key:      def.FeKey,
				Label:    def.FieldLabel,
				Type:     FieldMultiple,
				Required: def.IsRequired,
				Template: make([]Control, 0, len(fd.Fields)),
				Entries:  [][]Control{},
			}
			for _, sub := range fd.Fields {
				group.Template = append(group.Template, scalarControl(sub, "", ""))
			}
			for i, entry := range f.values[fd.Key()].Entries {
				row := make([]Control, 0, len(fd.Fields))
				for _, sub := range fd.Fields {
					row = append(row, scalarControl(sub, entry[sub.Key()], errs.Entry(fd.Key(), i, sub.Key())))
				}
				group.Entries = append(group.Entries, row)
			}
			controls = append(controls, group)
		}
	}
	return controls
}

func scalarControl(s *Scalar, value, msg string) Control {
	attrs := s.Rules.Attrs()
	if s.Required() {
		if attrs == nil {
			attrs = map[string]string{}
		}
		attrs["required"] = "required"
	}
	return Control{
		Key:      s.Key(),
		Label:    s.Def.FieldLabel,
		Type:     s.Def.FieldType,
		Required: s.Required(),
		Attrs:    attrs,
		Value:    value,
		Error:    msg,
	}
}
