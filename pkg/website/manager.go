package website

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"loomhq/atelier/pkg/schema"
	"loomhq/atelier/pkg/schema/validator"
	"loomhq/atelier/pkg/website/ops"
	"loomhq/atelier/pkg/website/paths"
	"loomhq/atelier/pkg/website/template"
)

// ErrNotFound is returned when an operation targets a website that does
// not exist.
var ErrNotFound = errors.New("website not found")

// Manager exposes the public operations of the website project core.
type Manager struct {
	policy    *paths.Policy
	resolver  *schema.Resolver
	validator *validator.Validator
	ops       *ops.Manager
	templates template.Source
	schemaRef string
	logger    *slog.Logger
}

// NewManager creates a website manager. templates may be nil when no
// template source is configured; schemaRef may be empty to disable
// configuration validation (used by tests that exercise only the
// filesystem protocol).
func NewManager(policy *paths.Policy, resolver *schema.Resolver, opsManager *ops.Manager, templates template.Source, schemaRef string) (*Manager, error) {
	if policy == nil {
		return nil, fmt.Errorf("path policy is required")
	}
	if opsManager == nil {
		return nil, fmt.Errorf("operation manager is required")
	}
	if resolver == nil && schemaRef != "" {
		return nil, fmt.Errorf("schema resolver is required when a schema is configured")
	}

	return &Manager{
		policy:    policy,
		resolver:  resolver,
		validator: validator.New(),
		ops:       opsManager,
		templates: templates,
		schemaRef: schemaRef,
		logger:    slog.Default().With("component", "website.manager"),
	}, nil
}

// CreateWebsite creates a new website project from the named template.
// The full project tree is staged, verified, and committed atomically: if
// staging or verification fails, no project directory exists afterward.
func (m *Manager) CreateWebsite(ctx context.Context, name, templateName string) (*ops.Result, error) {
	intent := &ops.Intent{
		Kind:     ops.KindCreate,
		Identity: name,
		Stage: func(ctx context.Context, stagingPath string) error {
			if m.templates != nil && templateName != "" {
				if err := m.templates.Materialize(ctx, templateName, stagingPath); err != nil {
					return err
				}
			}
			if err := os.MkdirAll(m.policy.ContentDir(stagingPath), 0o755); err != nil {
				return err
			}
			return m.ensureConfigFile(stagingPath, name)
		},
		Verify: m.verifyProjectTree,
	}
	return m.ops.Perform(ctx, intent)
}

// RenameWebsite renames a website project. The renamed tree is staged as
// a copy and committed under the new identity; the old tree is preserved
// in the trash as the pre-commit snapshot.
func (m *Manager) RenameWebsite(ctx context.Context, oldName, newName string) (*ops.Result, error) {
	return m.ops.Perform(ctx, &ops.Intent{
		Kind:           ops.KindRename,
		Identity:       oldName,
		TargetIdentity: newName,
		Verify:         m.verifyProjectTree,
	})
}

// DuplicateWebsite copies a website project under a new identity. The
// source project is never touched.
func (m *Manager) DuplicateWebsite(ctx context.Context, name, newName string) (*ops.Result, error) {
	return m.ops.Perform(ctx, &ops.Intent{
		Kind:           ops.KindDuplicate,
		Identity:       name,
		TargetIdentity: newName,
		Verify:         m.verifyProjectTree,
	})
}

// DeleteWebsite moves a website project to the trash, from which
// retention later removes it permanently.
func (m *Manager) DeleteWebsite(ctx context.Context, name string) (*ops.Result, error) {
	return m.ops.Perform(ctx, &ops.Intent{
		Kind:     ops.KindDelete,
		Identity: name,
	})
}

// GetWebsitePath returns the canonical project root for a website
// identity. It is pure: no filesystem access occurs.
func (m *Manager) GetWebsitePath(name string) (string, error) {
	return m.policy.CanonicalRoot(name)
}

// ContentPath resolves a project-relative content path for a website
// through the path policy.
func (m *Manager) ContentPath(name, relative string) (string, error) {
	root, err := m.policy.CanonicalRoot(name)
	if err != nil {
		return "", err
	}
	return m.policy.ResolveContentPath(root, relative)
}

// ReadConfiguration reads and parses a website's configuration file.
func (m *Manager) ReadConfiguration(ctx context.Context, name string) (map[string]any, error) {
	root, err := m.policy.CanonicalRoot(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	data, err := os.ReadFile(m.policy.ConfigFile(root))
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration of %q: %w", name, err)
	}

	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse configuration of %q: %w", name, err)
	}
	return config, nil
}

// WriteConfiguration validates the configuration against the resolved
// schema and, only if the result is empty, commits it as a single-file
// stage/verify/commit transaction. A non-empty Result is returned with a
// nil error and nothing is written: violations are data for the caller,
// not failures of the call.
func (m *Manager) WriteConfiguration(ctx context.Context, name string, config map[string]any) (*validator.Result, *ops.Result, error) {
	result, err := m.ValidateConfiguration(config)
	if err != nil {
		return nil, nil, err
	}
	if !result.Valid() {
		return result, nil, nil
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to serialize configuration of %q: %w", name, err)
	}

	opResult, err := m.ops.Perform(ctx, &ops.Intent{
		Kind:     ops.KindWriteConfig,
		Identity: name,
		Stage: func(_ context.Context, stagingFile string) error {
			return os.WriteFile(stagingFile, data, 0o644)
		},
		Verify: func(_ context.Context, stagingFile string) error {
			return m.verifyConfigFile(stagingFile)
		},
	})
	if err != nil {
		return result, nil, err
	}
	return result, opResult, nil
}

// ValidateConfiguration checks a configuration object against the
// resolved schema without touching any website.
func (m *Manager) ValidateConfiguration(config map[string]any) (*validator.Result, error) {
	if m.schemaRef == "" {
		return &validator.Result{}, nil
	}
	resolved, err := m.resolver.Resolve(m.schemaRef)
	if err != nil {
		return nil, err
	}
	return m.validator.Validate(config, resolved), nil
}

// Templates returns the available template names.
func (m *Manager) Templates() ([]string, error) {
	if m.templates == nil {
		return nil, nil
	}
	return m.templates.List()
}

// verifyProjectTree checks a staged project tree: the configuration file
// and content subtree must be present, and the configuration must pass
// schema validation.
func (m *Manager) verifyProjectTree(_ context.Context, stagingPath string) error {
	info, err := os.Stat(m.policy.ContentDir(stagingPath))
	if err != nil || !info.IsDir() {
		return fmt.Errorf("staged project lacks the %q content directory", m.policy.ContentRoot())
	}
	return m.verifyConfigFile(m.policy.ConfigFile(stagingPath))
}

// verifyConfigFile parses and validates one staged configuration file.
func (m *Manager) verifyConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("staged configuration unreadable: %w", err)
	}

	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("staged configuration is not valid JSON: %w", err)
	}

	result, err := m.ValidateConfiguration(config)
	if err != nil {
		return err
	}
	if !result.Valid() {
		return fmt.Errorf("staged configuration is invalid:\n%s", result.String())
	}
	return nil
}

// ensureConfigFile writes a minimal configuration file into a staged tree
// when the template did not provide one.
func (m *Manager) ensureConfigFile(stagingPath, name string) error {
	configPath := m.policy.ConfigFile(stagingPath)
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{"title": name}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0o644)
}
