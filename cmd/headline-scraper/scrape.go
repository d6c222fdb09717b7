package main

import (
	"fmt"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	getenv := deps.Getenv
	if c.URL != "" {
		deps.Getenv = func(k string) string {
			if k == "SCRAPE_URL" {
				return c.URL
			}
			return getenv(k)
		}
	}

	a, err := newApp(deps.Ctx, deps)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.Scrape(deps.Ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "found=%d saved=%d failed=%d\n", res.Found, res.Saved, res.Failed)
	return nil
}
