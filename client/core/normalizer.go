package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	dateMarker = "@date:"
	dateLayout = "2006-01-02"
)

var (
	dateRx = regexp.MustCompile(`@date:\s*([0-9]{4}-[0-9]{2}-[0-9]{2})(?:\s*[,-]?\s*([0-9]{4}-[0-9]{2}-[0-9]{2}))?`)
	numRx  = regexp.MustCompile(`#([0-9]+)(?:-([0-9]+))?`)
)

type Normalizer struct {
	clock        Clock
	numShorthand bool
}

func NewNormalizer(clock Clock, numShorthand bool) *Normalizer {
	if clock == nil {
		clock = time.Now
	}
	return &Normalizer{clock: clock, numShorthand: numShorthand}
}

func (n *Normalizer) Normalize(raw string, page int) (Query, error) {
	if raw == "" {
		return Query{}, ErrEmptyQuery
	}
	if page < 0 {
		return Query{}, InvalidQuery("page must be positive")
	}

	text := raw
	if strings.Contains(text, dateMarker) {
		var err error
		if text, err = n.expandDates(text); err != nil {
			return Query{}, err
		}
	}
	if n.numShorthand {
		text = expandNumbers(text)
	}
	return Query{Text: text, Page: page}, nil
}

// expandDates rewrites every @date: directive into an epoch-second bracket.
// All markers in the query must match.
func (n *Normalizer) expandDates(q string) (string, error) {
	matches := dateRx.FindAllStringSubmatchIndex(q, -1)
	if len(matches) != strings.Count(q, dateMarker) {
		return "", InvalidQuery("invalid date format")
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		var end string
		if m[4] >= 0 {
			end = q[m[4]:m[5]]
		}
		r, err := n.ParseRange(q[m[2]:m[3]], end)
		if err != nil {
			return "", err
		}
		b.WriteString(q[last:m[0]])
		fmt.Fprintf(&b, "@date:[%d %d]", r.From, r.To)
		last = m[1]
	}
	b.WriteString(q[last:])
	return b.String(), nil
}

// ParseRange converts an inclusive YYYY-MM-DD range to epoch seconds.
// An empty end means now.
func (n *Normalizer) ParseRange(start, end string) (DateRange, error) {
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return DateRange{}, InvalidQuery("invalid date format")
	}
	if end == "" {
		return DateRange{From: from.Unix(), To: n.clock().Unix()}, nil
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil {
		return DateRange{}, InvalidQuery("invalid date format")
	}
	return DateRange{
		From: from.Unix(),
		To:   to.Add(24*time.Hour - time.Second).Unix(),
	}, nil
}

func expandNumbers(q string) string {
	return numRx.ReplaceAllStringFunc(q, func(s string) string {
		m := numRx.FindStringSubmatch(s)
		if m[2] == "" {
			return fmt.Sprintf("@num:[%s %s]", m[1], m[1])
		}
		return fmt.Sprintf("@num:[%s %s]", m[1], m[2])
	})
}
