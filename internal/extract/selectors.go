package extract

import (
	"errors"
	"fmt"
	"strings"
)

// Selector locates one field on the page. Transform names the index transform
// applied to its matches ("identity" or "pair").
type Selector struct {
	Selector  string `yaml:"selector"`
	Transform string `yaml:"transform"`
}

// Selectors is the injectable selector set for a listing page.
type Selectors struct {
	Container    Selector `yaml:"container"`
	UserLink     Selector `yaml:"user_link"`
	HeadlineText Selector `yaml:"headline_text"`
	LikesText    Selector `yaml:"likes_text"`
	HrefLink     Selector `yaml:"href_link"`
}

// DefaultSelectors targets the reddit subreddit listing markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Container:    Selector{Selector: "div._1poyrkZ7g36PawDueRza-J"},
		UserLink:     Selector{Selector: "a._2tbHP6ZydRpjI44J3syuqC"},
		HeadlineText: Selector{Selector: "h2.s5kz2p-0"},
		LikesText:    Selector{Selector: "div._1rZYMD_4xY3gRcSS3p8ODO", Transform: "pair"},
		HrefLink:     Selector{Selector: "a.SQnoC3ObvgnGjWt90zD9Z"},
	}
}

// WithDefaults fills empty selectors from DefaultSelectors.
func (s Selectors) WithDefaults() Selectors {
	d := DefaultSelectors()
	fill := func(dst *Selector, src Selector) {
		if strings.TrimSpace(dst.Selector) == "" {
			*dst = src
		}
	}
	fill(&s.Container, d.Container)
	fill(&s.UserLink, d.UserLink)
	fill(&s.HeadlineText, d.HeadlineText)
	fill(&s.LikesText, d.LikesText)
	fill(&s.HrefLink, d.HrefLink)
	return s
}

// Validate checks that every selector is set and every transform is known.
func (s Selectors) Validate() error {
	if strings.TrimSpace(s.Container.Selector) == "" {
		return errors.New("container selector is required")
	}
	named := map[string]Selector{
		"container":     s.Container,
		"user_link":     s.UserLink,
		"headline_text": s.HeadlineText,
		"likes_text":    s.LikesText,
		"href_link":     s.HrefLink,
	}
	for name, sel := range named {
		if strings.TrimSpace(sel.Selector) == "" {
			return fmt.Errorf("%s selector is required", name)
		}
		if _, err := TransformByName(sel.Transform); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
