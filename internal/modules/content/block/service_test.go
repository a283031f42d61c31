package block

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"github.com/pagecraft/core/internal/middleware"
	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/drafts"
	"github.com/pagecraft/core/internal/pkg/formengine"
	"github.com/pagecraft/core/internal/pkg/jwt"
	"github.com/pagecraft/core/internal/pkg/pagination"
	"github.com/pagecraft/core/internal/pkg/response"
)

type memoryRepository struct {
	seq  int
	rows map[string]models.ContentBlockModel
}

func (r *memoryRepository) List(_ context.Context, org string, q pagination.Query, f ListFilter) ([]models.ContentBlockModel, response.Pagination, error) {
	var out []models.ContentBlockModel
	for _, m := range r.rows {
		if m.OrganizationID == org && (f.SectionID == "" || m.ContentBlockID == f.SectionID) {
			out = append(out, m)
		}
	}
	return out, pagination.Meta(int64(len(out)), q), nil
}

func (r *memoryRepository) Get(_ context.Context, org, id string) (*models.ContentBlockModel, error) {
	m, ok := r.rows[id]
	if !ok || m.OrganizationID != org {
		return nil, nil
	}
	m.ContentBlockData = m.ContentBlockData.Clone()
	return &m, nil
}

func (r *memoryRepository) Create(_ context.Context, m *models.ContentBlockModel) error {
	r.seq++
	m.ID = fmt.Sprintf("b%d", r.seq)
	r.rows[m.ID] = *m
	return nil
}

func (r *memoryRepository) Update(_ context.Context, m *models.ContentBlockModel) error {
	r.rows[m.ID] = *m
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, org, id string) (bool, error) {
	if m, ok := r.rows[id]; !ok || m.OrganizationID != org {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

type staticSchemas map[string][]formengine.FieldDefinition

func (s staticSchemas) Compiled(_ context.Context, _ string, id string) (*formengine.Schema, error) {
	defs, ok := s[id]
	if !ok {
		return nil, nil
	}
	schema, _ := formengine.Compile(id, defs)
	return schema, nil
}

func (staticSchemas) FormOptions() []formengine.Option { return nil }

var ac = access.Context{UserID: "u1", Role: access.RoleEditor, OrganizationID: "o1"}

func newTestService() (*Service, *memoryRepository) {
	repo := &memoryRepository{rows: map[string]models.ContentBlockModel{}}
	schemas := staticSchemas{
		"hero": {
			{FeKey: "title", FieldLabel: "Title", FieldType: formengine.FieldText, IsRequired: true},
			{FeKey: "intro", FieldLabel: "Intro", FieldType: formengine.FieldTextarea},
			{FeKey: "cta", FieldLabel: "CTA", FieldType: formengine.FieldURL},
			{FeKey: "slides", FieldLabel: "Slides", FieldType: formengine.FieldMultiple, MultipleData: []formengine.FieldDefinition{
				{FeKey: "heading", FieldLabel: "Heading", FieldType: formengine.FieldText, IsRequired: true},
			}},
		},
	}
	return NewService(repo, schemas, drafts.NewMemoryStore(time.Hour), nil), repo
}

func TestCreateValidatesAgainstSection(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, ac, &CreateBlockDTO{ContentBlockID: "hero", Title: "Home hero", ContentBlockData: formengine.ValueTree{
		"slides": formengine.GroupValue(formengine.Entry{"heading": ""}),
	}})
	var invalid *formengine.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if invalid.Errors.Field("title") != formengine.MsgRequired || invalid.Errors.Entry("slides", 0, "heading") != formengine.MsgRequired {
		t.Fatalf("errors = %+v", invalid.Errors)
	}
	if len(repo.rows) != 0 {
		t.Fatal("rejected block was stored")
	}

	if _, err := svc.Create(ctx, ac, &CreateBlockDTO{ContentBlockID: "missing", Title: "x"}); err != errSectionNotFound {
		t.Fatalf("missing section err = %v", err)
	}

	m, err := svc.Create(ctx, ac, &CreateBlockDTO{ContentBlockID: "hero", Title: "Home hero", ContentBlockData: formengine.ValueTree{
		"title":  formengine.TextValue("Welcome"),
		"legacy": formengine.TextValue("kept"),
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := formengine.ValueTree{
		"title":  formengine.TextValue("Welcome"),
		"intro":  formengine.TextValue(""),
		"cta":    formengine.TextValue(""),
		"slides": formengine.GroupValue(),
		"legacy": formengine.TextValue("kept"),
	}
	if diff := cmp.Diff(want, repo.rows[m.ID].ContentBlockData); diff != "" {
		t.Fatalf("stored data mismatch (-want +got):\n%s", diff)
	}
}

func TestFormDraftLifecycle(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	m, err := svc.Create(ctx, ac, &CreateBlockDTO{ContentBlockID: "hero", Title: "Hero", ContentBlockData: formengine.ValueTree{
		"title": formengine.TextValue("Welcome"),
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.InsertEntry(ctx, ac, m.ID, "slides", -1); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := svc.SetEntryField(ctx, ac, m.ID, "slides", 0, "heading", "second"); err != nil {
		t.Fatalf("set entry: %v", err)
	}
	if _, err := svc.InsertEntry(ctx, ac, m.ID, "slides", 0); err != nil {
		t.Fatalf("prepend: %v", err)
	}
	view, err := svc.Form(ctx, ac, m.ID)
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if !view.Draft {
		t.Fatal("form should report a draft")
	}
	wantSlides := formengine.GroupValue(formengine.Entry{"heading": ""}, formengine.Entry{"heading": "second"})
	if diff := cmp.Diff(wantSlides, view.Values["slides"]); diff != "" {
		t.Fatalf("draft slides mismatch (-want +got):\n%s", diff)
	}
	if len(repo.rows[m.ID].ContentBlockData["slides"].Entries) != 0 {
		t.Fatal("persisted data changed before submit")
	}

	_, err = svc.SubmitForm(ctx, ac, m.ID)
	var invalid *formengine.ValidationError
	if !errors.As(err, &invalid) || invalid.Errors.Entry("slides", 0, "heading") != formengine.MsgRequired {
		t.Fatalf("submit err = %v", err)
	}
	if view, _ := svc.Form(ctx, ac, m.ID); !view.Draft {
		t.Fatal("rejected submit dropped the draft")
	}

	if _, err := svc.RemoveEntry(ctx, ac, m.ID, "slides", 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	saved, err := svc.SubmitForm(ctx, ac, m.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if diff := cmp.Diff(formengine.GroupValue(formengine.Entry{"heading": "second"}), saved.ContentBlockData["slides"]); diff != "" {
		t.Fatalf("saved slides mismatch (-want +got):\n%s", diff)
	}
	if view, _ := svc.Form(ctx, ac, m.ID); view.Draft {
		t.Fatal("draft kept after submit")
	}

	if _, err := svc.SetField(ctx, ac, m.ID, "nope", "x"); !errors.Is(err, formengine.ErrUnknownField) {
		t.Fatalf("unknown field err = %v", err)
	}
	if _, err := svc.Form(ctx, ac, "missing"); err != errBlockNotFound {
		t.Fatalf("missing block err = %v", err)
	}
}

func TestPreviewRendersAndSanitises(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	m, err := svc.Create(ctx, ac, &CreateBlockDTO{ContentBlockID: "hero", Title: "Hero", ContentBlockData: formengine.ValueTree{
		"title": formengine.TextValue("<b>Welcome</b>"),
		"intro": formengine.TextValue("**bold** <script>alert(1)</script>"),
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetField(ctx, ac, m.ID, "cta", "javascript:alert(1)"); err != nil {
		t.Fatalf("set cta: %v", err)
	}

	p, err := svc.Preview(ctx, ac, m.ID)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !p.Draft || len(p.Fields) != 4 {
		t.Fatalf("preview = %+v", p)
	}
	if got := p.Fields[0].HTML; got != "&lt;b&gt;Welcome&lt;/b&gt;" {
		t.Errorf("title html = %q", got)
	}
	intro := p.Fields[1].HTML
	if !strings.Contains(intro, "<strong>bold</strong>") || strings.Contains(intro, "<script") {
		t.Errorf("intro html = %q", intro)
	}
	if strings.Contains(p.Fields[2].HTML, "href=") {
		t.Errorf("cta html kept a script URL: %q", p.Fields[2].HTML)
	}
}

func TestHandlerValidationFailedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService()
	signer, err := jwt.NewSigner("test", time.Hour)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"), middleware.Auth(signer))
	tok, _ := signer.Sign("u1", "editor", "o1")

	body := `{"contentBlockId":"hero","title":"Hero","contentBlockData":{"slides":[{"heading":"ok"},{}]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/blocks", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	want := `{"code":422,"errors":{"slides":[{},{"heading":"required"}],"title":"required"},"message":"validation failed","ok":0}`
	if got := w.Body.String(); got != want {
		t.Fatalf("body = %s\nwant  %s", got, want)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/blocks/missing/form/fields/title", strings.NewReader(`{"value":"x"}`))
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing block status = %d", w.Code)
	}
}
