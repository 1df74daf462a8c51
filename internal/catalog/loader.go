package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/quillboard/admission/internal/engine"
	"gopkg.in/yaml.v3"
)

// EnvCatalogPath overrides the configured catalog file location.
const EnvCatalogPath = "CATALOG_PATH"

// ResolvePath applies the env override and a default to a catalog path.
func ResolvePath(p string) string {
	if env := strings.TrimSpace(os.Getenv(EnvCatalogPath)); env != "" {
		return env
	}
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		return "./catalog.yaml"
	}
	return trimmed
}

// Load reads and validates a rule catalog from a YAML file.
func Load(path string) (Catalog, error) {
	data, errRead := os.ReadFile(path)
	if errRead != nil {
		return Catalog{}, fmt.Errorf("read catalog file: %w", errRead)
	}
	return Parse(data)
}

// Parse unmarshals and validates a YAML catalog document.
func Parse(data []byte) (Catalog, error) {
	// catalogFile maps the YAML catalog document.
	type catalogFile struct {
		Rules []engine.Rule `yaml:"rules"`
	}

	var file catalogFile
	if errUnmarshal := yaml.Unmarshal(data, &file); errUnmarshal != nil {
		return Catalog{}, fmt.Errorf("parse catalog file: %w", errUnmarshal)
	}

	loaded := New(file.Rules)
	if errValidate := loaded.Validate(); errValidate != nil {
		return Catalog{}, errValidate
	}
	return loaded, nil
}
