package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/PuerkitoBio/goquery"

	"github.com/nitesh/headline_scraper/internal/config"
	"github.com/nitesh/headline_scraper/internal/extract"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	sel := extract.DefaultSelectors()
	if c.Selectors != "" {
		var err error
		if sel, err = config.LoadSelectors(c.Selectors); err != nil {
			return err
		}
	}

	r := deps.Stdin
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", c.File, err)
		}
		defer f.Close()
		r = f
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	records, err := extract.Records(doc, sel, c.Home)
	if err != nil {
		return err
	}
	if !c.All {
		records = extract.Filter(records, c.Home)
	}

	items := make([]extract.Item, len(records))
	for i, rec := range records {
		items[i] = rec.Item()
	}
	return writeJSON(deps.Stdout, items)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
