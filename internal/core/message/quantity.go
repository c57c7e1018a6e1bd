package message

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidQuantity is returned when a quantity is neither positive nor "all"
var ErrInvalidQuantity = errors.New("quantity must be a positive integer or \"all\"")

// Quantity is the number of messages to collect. Unbounded means every
// owned message in the channel.
type Quantity int

// Unbounded requests all owned messages
const Unbounded Quantity = -1

// ParseQuantity parses "all" or a positive integer
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "all" || s == "*" {
		return Unbounded, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}

	q := Quantity(n)
	if err := q.Validate(); err != nil {
		return 0, err
	}
	return q, nil
}

// Validate checks that q is positive or Unbounded
func (q Quantity) Validate() error {
	if q == Unbounded || q > 0 {
		return nil
	}
	return fmt.Errorf("%w: %d", ErrInvalidQuantity, int(q))
}

// IsUnbounded reports whether q is the "all" sentinel
func (q Quantity) IsUnbounded() bool {
	return q == Unbounded
}

// Reached reports whether n collected items satisfy the quantity
func (q Quantity) Reached(n int) bool {
	if q.IsUnbounded() {
		return false
	}
	return n >= int(q)
}

// Truncate returns at most q messages from the front of msgs
func (q Quantity) Truncate(msgs []Message) []Message {
	if q.IsUnbounded() || len(msgs) <= int(q) {
		return msgs
	}
	return msgs[:q]
}

// String implements fmt.Stringer
func (q Quantity) String() string {
	if q.IsUnbounded() {
		return "all"
	}
	return strconv.Itoa(int(q))
}

// MarshalText implements encoding.TextMarshaler so quantities read as
// "all" or a number in YAML and JSON
func (q Quantity) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (q *Quantity) UnmarshalText(text []byte) error {
	parsed, err := ParseQuantity(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
