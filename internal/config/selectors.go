package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nitesh/headline_scraper/internal/extract"
)

// LoadSelectors reads a YAML selector set. Keys left out fall back to the
// built-in reddit selectors.
func LoadSelectors(path string) (extract.Selectors, error) {
	file, err := os.Open(path)
	if err != nil {
		return extract.Selectors{}, fmt.Errorf("failed to open selectors file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Warn("failed to close selectors file", "path", path, "error", closeErr)
		}
	}()

	var sel extract.Selectors
	if err := yaml.NewDecoder(file).Decode(&sel); err != nil && !errors.Is(err, io.EOF) {
		return extract.Selectors{}, fmt.Errorf("failed to parse selectors file: %w", err)
	}
	sel = sel.WithDefaults()
	if err := sel.Validate(); err != nil {
		return extract.Selectors{}, fmt.Errorf("selectors file %s: %w", path, err)
	}
	return sel, nil
}
