package models

import (
	"fmt"
	"strconv"
	"strings"
)

// RepRange is an inclusive rep target. A single number "n" parses to
// Low == High == n.
type RepRange struct {
	Low  int
	High int
}

// ParseRepRange parses "lo-hi" or "n".
func ParseRepRange(s string) (RepRange, error) {
	s = strings.TrimSpace(s)
	lo, hi, found := strings.Cut(s, "-")
	if !found {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return RepRange{}, fmt.Errorf("invalid rep range %q", s)
		}
		return RepRange{Low: n, High: n}, nil
	}
	l, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return RepRange{}, fmt.Errorf("invalid rep range %q", s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return RepRange{}, fmt.Errorf("invalid rep range %q", s)
	}
	r := RepRange{Low: l, High: h}
	if !r.Valid() {
		return RepRange{}, fmt.Errorf("invalid rep range %q", s)
	}
	return r, nil
}

// Valid reports whether the range is positive and ordered.
func (r RepRange) Valid() bool {
	return r.Low > 0 && r.High >= r.Low
}

func (r RepRange) String() string {
	if r.Low == r.High {
		return strconv.Itoa(r.Low)
	}
	return fmt.Sprintf("%d-%d", r.Low, r.High)
}

// MarshalText encodes the range in its "lo-hi" form for JSON and YAML.
func (r RepRange) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *RepRange) UnmarshalText(b []byte) error {
	parsed, err := ParseRepRange(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
