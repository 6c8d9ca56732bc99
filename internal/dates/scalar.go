package dates

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/99designs/gqlgen/graphql"
)

var (
	_ graphql.Marshaler   = Date{}
	_ graphql.Unmarshaler = (*Date)(nil)
)

// Date is the GraphQL `Date` scalar exchanged with the backend.
// The zero value marshals as null.
type Date struct {
	Time *time.Time
}

// NewDate wraps t, which may be nil.
func NewDate(t *time.Time) Date {
	return Date{Time: Clone(t)}
}

// MarshalGQL writes the ISO form, or null for an empty date.
func (d Date) MarshalGQL(w io.Writer) {
	if d.Time == nil {
		_, _ = io.WriteString(w, "null")
		return
	}
	_, _ = io.WriteString(w, strconv.Quote(Format(d.Time)))
}

// UnmarshalGQL reads a date from a GraphQL input value.
func (d *Date) UnmarshalGQL(v any) error {
	if v == nil {
		d.Time = nil
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("date must be a string, got %T", v)
	}
	t := Parse(s)
	if t == nil {
		return fmt.Errorf("invalid ISO-8601 date %q", s)
	}
	d.Time = t
	return nil
}

// MarshalJSON keeps JSON encoding aligned with the GraphQL form.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(Format(d.Time))), nil
}
