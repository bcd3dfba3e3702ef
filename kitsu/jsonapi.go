package kitsu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// document is a JSON:API top-level response. Data is either one resource or
// an array of them.
type document struct {
	Data     json.RawMessage `json:"data"`
	Included []resource      `json:"included"`
}

type resource struct {
	ID            string                  `json:"id"`
	Type          string                  `json:"type"`
	Attributes    json.RawMessage         `json:"attributes"`
	Relationships map[string]relationship `json:"relationships"`
}

type relationship struct {
	Data *identifier `json:"data"`
}

type identifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

func (d *document) resources() ([]resource, error) {
	raw := bytes.TrimSpace(d.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var many []resource
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, fmt.Errorf("kitsu: decode data array: %w", err)
		}
		return many, nil
	}
	var one resource
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("kitsu: decode data: %w", err)
	}
	return []resource{one}, nil
}

func (d *document) included(typ, id string) (resource, bool) {
	for _, r := range d.Included {
		if r.Type == typ && r.ID == id {
			return r, true
		}
	}
	return resource{}, false
}

func (r resource) intID() int {
	n, _ := strconv.Atoi(r.ID)
	return n
}

func (r resource) decode(v any) error {
	if len(r.Attributes) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Attributes, v); err != nil {
		return fmt.Errorf("kitsu: decode %s %s attributes: %w", r.Type, r.ID, err)
	}
	return nil
}

// decodeAll maps every resource through fn, stopping at the first error.
func decodeAll[T any](rs []resource, fn func(resource) (T, error)) ([]T, error) {
	out := make([]T, 0, len(rs))
	for _, r := range rs {
		v, err := fn(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// number accepts JSON numbers, numeric strings and null. Kitsu sends
// averageRating as a string.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("kitsu: invalid number %s", b)
	}
	*n = number(f)
	return nil
}

const dateLayout = "2006-01-02"

// parseTime reads Kitsu timestamps and calendar dates. Anything unparsable
// yields the zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t
	}
	return time.Time{}
}
