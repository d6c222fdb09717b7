package extract

// Optional holds a value that may not have been found on the page.
type Optional struct {
	Value string
	Set   bool
}

// Some returns an Optional holding v.
func Some(v string) Optional {
	return Optional{Value: v, Set: true}
}

// Present reports whether a non-empty value was found.
func (o Optional) Present() bool {
	return o.Set && o.Value != ""
}

// Record is a candidate listing item before persistence. Its identity is its
// position in the container match sequence.
type Record struct {
	Headline Optional
	User     Optional
	Likes    Optional
	URL      string
}

func newRecord(home string) Record {
	return Record{URL: home}
}

// Valid reports whether the record is complete enough to be stored: headline,
// user and likes present, and an href appended to home.
func (r Record) Valid(home string) bool {
	return r.Headline.Present() &&
		r.User.Present() &&
		r.Likes.Present() &&
		r.URL != home
}

// Item is the flat form of a Record used by callers that store or print it.
type Item struct {
	Headline string `json:"headline"`
	User     string `json:"user"`
	Likes    string `json:"likes"`
	URL      string `json:"url"`
}

// Item flattens the record, absent values become empty strings.
func (r Record) Item() Item {
	return Item{
		Headline: r.Headline.Value,
		User:     r.User.Value,
		Likes:    r.Likes.Value,
		URL:      r.URL,
	}
}
