// Package extract aligns independently matched selector results into listing
// records by position.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field binds one selector to the record field it fills.
type Field struct {
	Name      string
	Selector  string
	Transform Transform
	// Value derives the field value from a match; false skips the match.
	Value func(sel *goquery.Selection) (string, bool)
	// Apply writes the value into the record, overwriting earlier writes.
	Apply func(r *Record, v string)
}

// Fields returns the non-container fields in the order they are applied.
// Links are resolved against home.
func (s Selectors) Fields(home string) ([]Field, error) {
	defs := []struct {
		name  string
		sel   Selector
		value func(*goquery.Selection) (string, bool)
		apply func(*Record, string)
	}{
		{"user_link", s.UserLink, lastPathSegment, func(r *Record, v string) { r.User = Some(v) }},
		{"headline_text", s.HeadlineText, text, func(r *Record, v string) { r.Headline = Some(v) }},
		{"likes_text", s.LikesText, text, func(r *Record, v string) { r.Likes = Some(v) }},
		{"href_link", s.HrefLink, href, func(r *Record, v string) { r.URL = home + v }},
	}

	fields := make([]Field, 0, len(defs))
	for _, d := range defs {
		tf, err := TransformByName(d.sel.Transform)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
		fields = append(fields, Field{
			Name:      d.name,
			Selector:  d.sel.Selector,
			Transform: tf,
			Value:     d.value,
			Apply:     d.apply,
		})
	}
	return fields, nil
}

// Extract builds one record per container match, fills the records from the
// remaining selectors and returns the complete ones in container order.
// Matches whose transformed index falls outside the record range are dropped.
func Extract(doc *goquery.Document, selectors Selectors, home string) ([]Record, error) {
	records, err := Records(doc, selectors, home)
	if err != nil {
		return nil, err
	}
	return Filter(records, home), nil
}

// Records is Extract without the final Filter: one record per container,
// complete or not.
func Records(doc *goquery.Document, selectors Selectors, home string) ([]Record, error) {
	fields, err := selectors.Fields(home)
	if err != nil {
		return nil, err
	}

	n := doc.Find(selectors.Container.Selector).Length()
	records := make([]Record, n)
	for i := range records {
		records[i] = newRecord(home)
	}

	for _, f := range fields {
		Align(records, doc.Find(f.Selector), f)
	}
	return records, nil
}

// ExtractHTML parses markup and runs Extract on it.
func ExtractHTML(html string, selectors Selectors, home string) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return Extract(doc, selectors, home)
}

// Align writes the matches of one field into records through its transform.
func Align(records []Record, matches *goquery.Selection, f Field) {
	matches.Each(func(j int, sel *goquery.Selection) {
		t := f.Transform(j)
		if t < 0 || t >= len(records) {
			return
		}
		v, ok := f.Value(sel)
		if !ok {
			return
		}
		f.Apply(&records[t], v)
	})
}

// Filter keeps the records that are valid against home, preserving order.
func Filter(records []Record, home string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Valid(home) {
			out = append(out, r)
		}
	}
	return out
}

func text(sel *goquery.Selection) (string, bool) {
	return strings.TrimSpace(sel.Text()), true
}

func href(sel *goquery.Selection) (string, bool) {
	return sel.Attr("href")
}

func lastPathSegment(sel *goquery.Selection) (string, bool) {
	h, ok := sel.Attr("href")
	if !ok {
		return "", false
	}
	parts := strings.Split(h, "/")
	return parts[len(parts)-1], true
}
