package core

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// ComicRef is a single result item as the backend sent it.
type ComicRef json.RawMessage

func (c ComicRef) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	return c, nil
}

func (c *ComicRef) UnmarshalJSON(data []byte) error {
	*c = append((*c)[0:0], data...)
	return nil
}

// Decode gives a typed view of the item for display.
func (c ComicRef) Decode() (Comic, error) {
	var comic Comic
	err := json.Unmarshal(c, &comic)
	return comic, err
}

type Comic struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Number int    `json:"num"`
	Alt    string `json:"alt,omitempty"`
	ImgURL string `json:"img_url"`
	Date   int64  `json:"date"`
}

type SearchResult struct {
	Count  int
	Comics []ComicRef
	Time   float64
}

type DateRange struct {
	From int64
	To   int64
}

// Query is a normalized search request. Page 0 means no page parameter.
type Query struct {
	Text string
	Page int
}

func (q Query) Encode() string {
	var b strings.Builder
	b.WriteString("/search?q=")
	b.WriteString(escape(q.Text))
	if q.Page > 0 {
		b.WriteString("&page=")
		b.WriteString(strconv.Itoa(q.Page))
	}
	return b.String()
}

// escape percent-encodes s for a query parameter, using %20 for spaces.
// QueryEscape already turns a literal '+' into %2B, so the replace is safe.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
