package formengine_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pagecraft/core/internal/pkg/formengine"
)

func scalar(t *testing.T, typ formengine.FieldType, validation string) *formengine.Scalar {
	t.Helper()
	rules, err := formengine.ParseConstraints(validation)
	if err != nil {
		t.Fatalf("parse %q: %v", validation, err)
	}
	return &formengine.Scalar{
		Def:   formengine.FieldDefinition{FeKey: "f", FieldType: typ, Validation: validation},
		Rules: rules,
	}
}

func TestScalarCheck(t *testing.T) {
	tests := []struct {
		name       string
		typ        formengine.FieldType
		validation string
		value      string
		want       string
	}{
		{name: "optional empty", typ: formengine.FieldEmail, value: "", want: ""},
		{name: "required by rule", typ: formengine.FieldText, validation: `{"required": true}`, value: "", want: formengine.MsgRequired},
		{name: "required attribute form", typ: formengine.FieldText, validation: `{"required": "required"}`, value: "", want: formengine.MsgRequired},
		{name: "minlength", typ: formengine.FieldText, validation: `{"minlength": "3"}`, value: "ab", want: "must be at least 3 characters"},
		{name: "maxlength counts runes", typ: formengine.FieldText, validation: `{"maxlength": 3}`, value: "äöü", want: ""},
		{name: "maxlength exceeded", typ: formengine.FieldText, validation: `{"maxlength": 3}`, value: "abcd", want: "must be at most 3 characters"},
		{name: "pattern anchored", typ: formengine.FieldText, validation: `{"pattern": "[a-z]+"}`, value: "abc1", want: formengine.MsgPattern},
		{name: "pattern ok", typ: formengine.FieldText, validation: `{"pattern": "[a-z]+"}`, value: "abc", want: ""},
		{name: "email ok", typ: formengine.FieldEmail, value: "ada@example.com", want: ""},
		{name: "email display name rejected", typ: formengine.FieldEmail, value: "Ada <ada@example.com>", want: formengine.MsgEmail},
		{name: "email invalid", typ: formengine.FieldEmail, value: "ada", want: formengine.MsgEmail},
		{name: "url ok", typ: formengine.FieldURL, value: "https://example.com/a", want: ""},
		{name: "url relative", typ: formengine.FieldURL, value: "/a/b", want: formengine.MsgURL},
		{name: "number invalid", typ: formengine.FieldNumber, value: "twelve", want: formengine.MsgNumber},
		{name: "number below min", typ: formengine.FieldNumber, validation: `{"min": 1, "max": 10}`, value: "0", want: "must be at least 1"},
		{name: "number above max", typ: formengine.FieldNumber, validation: `{"min": 1, "max": 10}`, value: "10.5", want: "must be at most 10"},
		{name: "number in range", typ: formengine.FieldNumber, validation: `{"min": 1, "max": 10}`, value: "7", want: ""},
		{name: "date invalid", typ: formengine.FieldDate, value: "17/10/2026", want: formengine.MsgDate},
		{name: "date before min", typ: formengine.FieldDate, validation: `{"min": "2026-01-01"}`, value: "2025-12-31", want: "must be on or after 2026-01-01"},
		{name: "date ok", typ: formengine.FieldDate, validation: `{"min": "2026-01-01", "max": "2026-12-31"}`, value: "2026-10-17", want: ""},
		{name: "file extension", typ: formengine.FieldFile, validation: `{"accept": ".pdf,.PNG"}`, value: "/uploads/a.png", want: ""},
		{name: "file wildcard", typ: formengine.FieldFile, validation: `{"accept": ["image/*"]}`, value: "https://cdn.example.com/a.jpg?v=2", want: ""},
		{name: "file rejected", typ: formengine.FieldFile, validation: `{"accept": ["image/*"]}`, value: "report.pdf", want: formengine.MsgAccept},
		{name: "file exact mime", typ: formengine.FieldFile, validation: `{"accept": "application/pdf"}`, value: "report.pdf", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scalar(t, tt.typ, tt.validation).Check(tt.value)
			if got != tt.want {
				t.Fatalf("Check(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseConstraints(t *testing.T) {
	c, err := formengine.ParseConstraints(`{"Pattern": "\\d+", "minLength": 2, "MAXLENGTH": "8", "accept": ".JPG, image/png"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[string]string{
		"pattern":   `\d+`,
		"minlength": "2",
		"maxlength": "8",
		"accept":    ".jpg,image/png",
	}
	if diff := cmp.Diff(want, c.Attrs()); diff != "" {
		t.Fatalf("attrs mismatch (-want +got):\n%s", diff)
	}

	for _, raw := range []string{"{not json", `"just a string"`, `{"maxlength": -1}`, `{"pattern": "("}`, `{"required": "maybe"}`} {
		c, err := formengine.ParseConstraints(raw)
		if err == nil {
			t.Fatalf("ParseConstraints(%q) expected error", raw)
		}
		if c.Attrs() != nil || c.Required {
			t.Fatalf("ParseConstraints(%q) should return zero constraints, got %+v", raw, c)
		}
	}

	if c, err := formengine.ParseConstraints("  "); err != nil || c.Attrs() != nil {
		t.Fatalf("blank validation: %+v, %v", c, err)
	}
}

func TestBrokenPatternKeepsOtherRules(t *testing.T) {
	c, err := formengine.ParseConstraints(`{"maxlength": 3, "pattern": "(?=a)a", "required": true}`)
	if err == nil {
		t.Fatal("expected an error for the unsupported pattern")
	}
	if diff := cmp.Diff(map[string]string{"maxlength": "3"}, c.Attrs()); diff != "" {
		t.Fatalf("attrs mismatch (-want +got):\n%s", diff)
	}
	if !c.Required {
		t.Fatal("required rule dropped")
	}

	schema, warnings := formengine.Compile("s", []formengine.FieldDefinition{
		{FeKey: "code", FieldLabel: "Code", FieldType: formengine.FieldText, Validation: `{"maxlength": 3, "pattern": "(?=a)a"}`},
	})
	if len(warnings) != 1 || warnings[0].Path != "code" {
		t.Fatalf("warnings = %v", warnings)
	}
	form := formengine.NewForm(schema, nil)
	if err := form.SetValue("code", "abcdef"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if errs := form.Validate(); errs.Empty() {
		t.Fatal("maxlength rule should still reject abcdef")
	}
}

func TestValueJSONToleratesLegacyScalars(t *testing.T) {
	var tree formengine.ValueTree
	raw := `{"count": 3, "ratio": 0.5, "flag": true, "gone": null, "rows": [{"qty": 2, "name": "x"}]}`
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := formengine.ValueTree{
		"count": {Text: "3", Raw: json.RawMessage("3")},
		"ratio": {Text: "0.5", Raw: json.RawMessage("0.5")},
		"flag":  {Text: "true", Raw: json.RawMessage("true")},
		"gone":  formengine.TextValue(""),
		"rows":  formengine.GroupValue(formengine.Entry{"qty": "2", "name": "x"}),
	}
	if diff := cmp.Diff(want, tree); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}

	encoded, err := json.Marshal(formengine.ValueTree{"rows": {IsGroup: true}, "t": formengine.TextValue("a")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != `{"rows":[],"t":"a"}` {
		t.Fatalf("encoded = %s", encoded)
	}
}

func TestValueJSONKeepsUnmodelledShapes(t *testing.T) {
	raw := `{"big":12345678901234567890,"obj":{"a":1,"b":[true]},"tags":["a","b"],"title":"x"}`
	var tree formengine.ValueTree
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := tree["big"].Text; got != "12345678901234567890" {
		t.Fatalf("big text = %q", got)
	}
	encoded, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != raw {
		t.Fatalf("round trip mismatch:\n got %s\nwant %s", encoded, raw)
	}
}

func TestUnknownKeysSurviveSubmit(t *testing.T) {
	schema, _ := formengine.Compile("s1", []formengine.FieldDefinition{
		{FeKey: "title", FieldLabel: "Title", FieldType: formengine.FieldText},
		{FeKey: "count", FieldLabel: "Count", FieldType: formengine.FieldNumber},
	})
	var stored formengine.ValueTree
	if err := json.Unmarshal([]byte(`{"title":"x","count":7,"extra":{"k":[1,2]},"tags":["a","b"]}`), &stored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	payload, err := formengine.NewForm(schema, stored).Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	encoded, err := json.Marshal(payload.ContentBlockData)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"count":"7","extra":{"k":[1,2]},"tags":["a","b"],"title":"x"}`
	if string(encoded) != want {
		t.Fatalf("payload = %s, want %s", encoded, want)
	}
}
