package website

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"loomhq/atelier/pkg/schema"
	"loomhq/atelier/pkg/website/journal"
	"loomhq/atelier/pkg/website/ops"
	"loomhq/atelier/pkg/website/paths"
	"loomhq/atelier/pkg/website/template"
	"loomhq/atelier/pkg/website/trash"
)

const testSchema = `{
	"type": "object",
	"required": ["title"],
	"allOf": [{"$ref": "modules/contact.json"}]
}`

const contactFragment = `{
	"type": "object",
	"properties": {
		"title": {"type": "string", "format": "nonEmptyString"},
		"contact": {"type": "string", "format": "email"}
	}
}`

type fixture struct {
	manager   *Manager
	policy    *paths.Policy
	sitesRoot string
}

// newFixture stands up a manager with a schema, a template source, and an
// in-memory journal, all under one temp directory.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()

	write := func(name, content string) {
		path := filepath.Join(base, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	write("schemas/site.json", testSchema)
	write("schemas/modules/contact.json", contactFragment)
	write("templates/blog/site.json", `{"title": "A Blog"}`)
	write("templates/blog/sources/index.md", "# Welcome")

	policy, err := paths.New(filepath.Join(base, "sites"), "")
	if err != nil {
		t.Fatalf("paths.New() error = %v", err)
	}
	trashStore, err := trash.NewStore(filepath.Join(base, "trash"))
	if err != nil {
		t.Fatalf("trash.NewStore() error = %v", err)
	}
	opsManager, err := ops.NewManager(policy, trashStore, journal.NewMemoryJournal(), nil)
	if err != nil {
		t.Fatalf("ops.NewManager() error = %v", err)
	}
	templates, err := template.NewDirSource(filepath.Join(base, "templates"))
	if err != nil {
		t.Fatalf("template.NewDirSource() error = %v", err)
	}

	resolver := schema.NewResolver(schema.NewDocumentLoader(nil), schema.NewResolutionCache(), nil)
	manager, err := NewManager(policy, resolver, opsManager, templates, filepath.Join(base, "schemas", "site.json"))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	return &fixture{manager: manager, policy: policy, sitesRoot: policy.SitesRoot()}
}

func TestManager_CreateWebsite_FromTemplate(t *testing.T) {
	f := newFixture(t)

	result, err := f.manager.CreateWebsite(context.Background(), "my-blog", "blog")
	if err != nil {
		t.Fatalf("CreateWebsite() error = %v, want nil", err)
	}

	if want := filepath.Join(f.sitesRoot, "my-blog"); result.Path != want {
		t.Errorf("Path = %q, want %q", result.Path, want)
	}
	data, err := os.ReadFile(filepath.Join(result.Path, "sources", "index.md"))
	if err != nil {
		t.Fatalf("ReadFile(index.md) error = %v", err)
	}
	if string(data) != "# Welcome" {
		t.Errorf("index.md = %q, want template content", data)
	}

	config, err := f.manager.ReadConfiguration(context.Background(), "my-blog")
	if err != nil {
		t.Fatalf("ReadConfiguration() error = %v", err)
	}
	if config["title"] != "A Blog" {
		t.Errorf("title = %v, want \"A Blog\"", config["title"])
	}
}

func TestManager_CreateWebsite_WithoutTemplate(t *testing.T) {
	f := newFixture(t)

	result, err := f.manager.CreateWebsite(context.Background(), "plain-site", "")
	if err != nil {
		t.Fatalf("CreateWebsite() error = %v, want nil", err)
	}

	info, err := os.Stat(filepath.Join(result.Path, "sources"))
	if err != nil || !info.IsDir() {
		t.Error("created project lacks the content directory")
	}
	config, err := f.manager.ReadConfiguration(context.Background(), "plain-site")
	if err != nil {
		t.Fatalf("ReadConfiguration() error = %v", err)
	}
	if config["title"] != "plain-site" {
		t.Errorf("default title = %v, want the website name", config["title"])
	}
}

func TestManager_CreateWebsite_UnknownTemplateLeavesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.CreateWebsite(context.Background(), "my-site", "no-such-template")

	var opErr *ops.OperationError
	if !errors.As(err, &opErr) || opErr.Kind != ops.KindStagingFailed {
		t.Fatalf("CreateWebsite() error = %v, want StagingFailed", err)
	}
	if _, statErr := os.Stat(filepath.Join(f.sitesRoot, "my-site")); !os.IsNotExist(statErr) {
		t.Error("failed create left a project directory behind")
	}
}

func TestManager_RenameAndDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.manager.CreateWebsite(ctx, "first", "blog"); err != nil {
		t.Fatalf("CreateWebsite() error = %v", err)
	}

	renamed, err := f.manager.RenameWebsite(ctx, "first", "second")
	if err != nil {
		t.Fatalf("RenameWebsite() error = %v, want nil", err)
	}
	if _, statErr := os.Stat(filepath.Join(f.sitesRoot, "first")); !os.IsNotExist(statErr) {
		t.Error("old identity still present after rename")
	}
	if renamed.TrashPath == "" {
		t.Error("rename kept no snapshot in the trash")
	}

	duplicated, err := f.manager.DuplicateWebsite(ctx, "second", "third")
	if err != nil {
		t.Fatalf("DuplicateWebsite() error = %v, want nil", err)
	}
	for _, name := range []string{"second", "third"} {
		if _, statErr := os.Stat(filepath.Join(f.sitesRoot, name, "site.json")); statErr != nil {
			t.Errorf("project %q missing after duplicate: %v", name, statErr)
		}
	}
	if duplicated.TrashPath != "" {
		t.Errorf("duplicate TrashPath = %q, want empty", duplicated.TrashPath)
	}
}

func TestManager_DeleteWebsite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.manager.CreateWebsite(ctx, "doomed", ""); err != nil {
		t.Fatalf("CreateWebsite() error = %v", err)
	}
	result, err := f.manager.DeleteWebsite(ctx, "doomed")
	if err != nil {
		t.Fatalf("DeleteWebsite() error = %v, want nil", err)
	}

	if _, statErr := os.Stat(filepath.Join(f.sitesRoot, "doomed")); !os.IsNotExist(statErr) {
		t.Error("deleted project still present")
	}
	if _, statErr := os.Stat(result.TrashPath); statErr != nil {
		t.Errorf("trash entry missing: %v", statErr)
	}

	if _, err := f.manager.ReadConfiguration(ctx, "doomed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadConfiguration() after delete error = %v, want ErrNotFound", err)
	}
}

func TestManager_GetWebsitePath(t *testing.T) {
	f := newFixture(t)

	path, err := f.manager.GetWebsitePath("any-site")
	if err != nil {
		t.Fatalf("GetWebsitePath() error = %v, want nil", err)
	}
	if want := filepath.Join(f.sitesRoot, "any-site"); path != want {
		t.Errorf("GetWebsitePath() = %q, want %q", path, want)
	}

	if _, err := f.manager.GetWebsitePath("../escape"); err == nil {
		t.Error("GetWebsitePath() with traversal name error = nil, want error")
	}
}

func TestManager_ContentPath(t *testing.T) {
	f := newFixture(t)

	plain, err := f.manager.ContentPath("my-site", "pages/about.md")
	if err != nil {
		t.Fatalf("ContentPath() error = %v, want nil", err)
	}
	prefixed, err := f.manager.ContentPath("my-site", "sources/pages/about.md")
	if err != nil {
		t.Fatalf("ContentPath() with prefix error = %v, want nil", err)
	}
	if plain != prefixed {
		t.Errorf("prefixed path %q differs from plain %q", prefixed, plain)
	}

	if _, err := f.manager.ContentPath("my-site", "../outside"); err == nil {
		t.Error("ContentPath() with traversal error = nil, want error")
	}
}

func TestManager_WriteConfiguration_ValidCommits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.manager.CreateWebsite(ctx, "my-site", ""); err != nil {
		t.Fatalf("CreateWebsite() error = %v", err)
	}

	valResult, opResult, err := f.manager.WriteConfiguration(ctx, "my-site", map[string]any{
		"title":   "Updated",
		"contact": "owner@example.com",
	})
	if err != nil {
		t.Fatalf("WriteConfiguration() error = %v, want nil", err)
	}
	if !valResult.Valid() {
		t.Fatalf("validation violations = %v, want none", valResult.Violations)
	}
	if opResult == nil {
		t.Fatal("op result = nil, want committed write")
	}

	config, err := f.manager.ReadConfiguration(ctx, "my-site")
	if err != nil {
		t.Fatalf("ReadConfiguration() error = %v", err)
	}
	if config["title"] != "Updated" {
		t.Errorf("title = %v, want \"Updated\"", config["title"])
	}
}

func TestManager_WriteConfiguration_InvalidWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.manager.CreateWebsite(ctx, "my-site", ""); err != nil {
		t.Fatalf("CreateWebsite() error = %v", err)
	}
	before, err := f.manager.ReadConfiguration(ctx, "my-site")
	if err != nil {
		t.Fatalf("ReadConfiguration() error = %v", err)
	}

	valResult, opResult, err := f.manager.WriteConfiguration(ctx, "my-site", map[string]any{
		"title":   "",
		"contact": "not-an-email",
	})
	if err != nil {
		t.Fatalf("WriteConfiguration() error = %v, want nil (violations are data)", err)
	}
	if valResult.Valid() {
		t.Fatal("validation result valid = true, want violations")
	}
	if opResult != nil {
		t.Errorf("op result = %+v, want nil for invalid configuration", opResult)
	}

	after, err := f.manager.ReadConfiguration(ctx, "my-site")
	if err != nil {
		t.Fatalf("ReadConfiguration() error = %v", err)
	}
	if after["title"] != before["title"] {
		t.Error("invalid WriteConfiguration() changed the stored configuration")
	}
}

func TestManager_ValidateConfiguration(t *testing.T) {
	f := newFixture(t)

	result, err := f.manager.ValidateConfiguration(map[string]any{})
	if err != nil {
		t.Fatalf("ValidateConfiguration() error = %v, want nil", err)
	}
	if result.Valid() {
		t.Error("empty configuration reported valid, want missing-title violation")
	}

	result, err = f.manager.ValidateConfiguration(map[string]any{"title": "ok"})
	if err != nil {
		t.Fatalf("ValidateConfiguration() error = %v, want nil", err)
	}
	if !result.Valid() {
		t.Errorf("violations = %v, want none", result.Violations)
	}
}

func TestManager_ValidationDisabledWithoutSchema(t *testing.T) {
	base := t.TempDir()
	policy, err := paths.New(filepath.Join(base, "sites"), "")
	if err != nil {
		t.Fatalf("paths.New() error = %v", err)
	}
	trashStore, err := trash.NewStore(filepath.Join(base, "trash"))
	if err != nil {
		t.Fatalf("trash.NewStore() error = %v", err)
	}
	opsManager, err := ops.NewManager(policy, trashStore, nil, nil)
	if err != nil {
		t.Fatalf("ops.NewManager() error = %v", err)
	}
	manager, err := NewManager(policy, nil, opsManager, nil, "")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	result, err := manager.ValidateConfiguration(map[string]any{"anything": true})
	if err != nil {
		t.Fatalf("ValidateConfiguration() error = %v, want nil", err)
	}
	if !result.Valid() {
		t.Errorf("violations = %v, want none when validation is disabled", result.Violations)
	}
}

func TestManager_Templates(t *testing.T) {
	f := newFixture(t)

	names, err := f.manager.Templates()
	if err != nil {
		t.Fatalf("Templates() error = %v, want nil", err)
	}
	if len(names) != 1 || names[0] != "blog" {
		t.Errorf("Templates() = %v, want [blog]", names)
	}
}
