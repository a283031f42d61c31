package backup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"github.com/pagecraft/core/internal/config"
	"github.com/pagecraft/core/internal/middleware"
	"github.com/pagecraft/core/internal/models"
	"github.com/pagecraft/core/internal/pkg/cron"
	"github.com/pagecraft/core/internal/pkg/jwt"
	"github.com/pagecraft/core/internal/pkg/menutree"
)

type fakeSource struct {
	snaps map[string]Snapshot
	fail  string
}

func (f *fakeSource) Organizations(context.Context) ([]string, error) {
	return []string{"o1", "o2"}, nil
}

func (f *fakeSource) Load(_ context.Context, org string, snap *Snapshot) error {
	if org == f.fail {
		return errors.New("boom")
	}
	src := f.snaps[org]
	snap.Sections, snap.Blocks, snap.Menus = src.Sections, src.Blocks, src.Menus
	return nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{snaps: map[string]Snapshot{
		"o1": {
			Sections: []models.SectionSchemaModel{{Base: models.Base{ID: "s1"}, Tenant: models.Tenant{OrganizationID: "o1"}, Slug: "hero", Name: "Hero"}},
			Blocks:   []models.ContentBlockModel{{Base: models.Base{ID: "b1"}, Tenant: models.Tenant{OrganizationID: "o1"}, ContentBlockID: "s1", Title: "Home"}},
			Menus: []models.MenuModel{{Base: models.Base{ID: "m1"}, Tenant: models.Tenant{OrganizationID: "o1"}, Name: "Main", Slug: "main",
				MenuJSONData: []menutree.Item{{ID: "i1", Name: "Home", Link: "/"}}}},
		},
	}}
}

func newTestService(t *testing.T, src Source) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc := NewService(src, NewStore(config.S3Config{}, dir), nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC) }
	return svc, dir
}

func TestCreateWritesLocalSnapshot(t *testing.T) {
	svc, dir := newTestService(t, newFakeSource())

	artifact, err := svc.Create(context.Background(), "o1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	wantPath := filepath.Join(dir, "o1", "backup-2024-05-01T08-30-00.json")
	if artifact.Location != wantPath {
		t.Fatalf("location = %q, want %q", artifact.Location, wantPath)
	}
	if artifact.Sections != 1 || artifact.Blocks != 1 || artifact.Menus != 1 {
		t.Fatalf("counts = %+v", artifact)
	}

	raw, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Format != snapshotFormat || snap.OrganizationID != "o1" {
		t.Fatalf("header = %+v", snap)
	}
	if diff := cmp.Diff([]menutree.Item{{ID: "i1", Name: "Home", Link: "/"}}, snap.Menus[0].MenuJSONData); diff != "" {
		t.Fatalf("menu tree mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateRequiresOrganization(t *testing.T) {
	svc, _ := newTestService(t, newFakeSource())
	if _, err := svc.Create(context.Background(), " "); !errors.Is(err, errNoOrganization) {
		t.Fatalf("err = %v, want errNoOrganization", err)
	}
}

func TestRunAllContinuesPastFailures(t *testing.T) {
	src := newFakeSource()
	src.fail = "o1"
	svc, dir := newTestService(t, src)

	err := svc.RunAll(context.Background())
	if err == nil {
		t.Fatal("expected joined error for o1")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "o2", "backup-2024-05-01T08-30-00.json")); statErr != nil {
		t.Fatalf("o2 snapshot missing: %v", statErr)
	}
}

func TestNormalizeObjectKey(t *testing.T) {
	cases := map[string]string{
		"o1/backup.json":      "o1/backup.json",
		"/prefix//o1/b.json":  "prefix/o1/b.json",
		"../../etc/passwd":    "etc/passwd",
		`prefix\o1\.\b.json`: "prefix/o1/b.json",
		"  ":                  "",
	}
	for in, want := range cases {
		if got := normalizeObjectKey(in); got != want {
			t.Errorf("normalizeObjectKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHandlerRequiresAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t, newFakeSource())
	scheduler := cron.New(nil)
	scheduler.Register(Job(svc, time.Hour))

	signer, err := jwt.NewSigner("test", time.Hour)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	r := gin.New()
	NewHandler(svc, scheduler).RegisterRoutes(r.Group("/api/v1"), middleware.Auth(signer))
	token := func(role string) string {
		tok, err := signer.Sign("u1", role, "o1")
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return "Bearer " + tok
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backups", nil)
	req.Header.Set("Authorization", token("editor"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("editor status = %d, want 403", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/backups", nil)
	req.Header.Set("Authorization", token("admin"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin status = %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/backups/jobs", nil)
	req.Header.Set("Authorization", token("admin"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body struct {
		Data []cron.ListItem `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode jobs: %v", err)
	}
	jobs := body.Data
	if len(jobs) != 1 || jobs[0].Name != JobName || jobs[0].Status != cron.StatusIdle {
		t.Fatalf("jobs = %+v", jobs)
	}
}
