package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ObjectWriter is anything with a wire form: entities and filters.
type ObjectWriter interface {
	AsObject(opts AsObjectOptions) Object
}

// CheckRoundTrip verifies that x survives a full serialization round trip:
// fromObject(x.AsObject()).AsObject() must equal x.AsObject().
func CheckRoundTrip[T ObjectWriter](x T, fromObject func(Object) T) error {
	opts := AsObjectOptions{}
	first := x.AsObject(opts)
	second := fromObject(first).AsObject(opts)
	return compareObjects(first, second)
}

// CheckJSONRoundTrip is CheckRoundTrip through an encoded JSON document, the
// way objects come back from local storage or the network.
func CheckJSONRoundTrip[T ObjectWriter](x T, fromObject func(Object) T) error {
	opts := AsObjectOptions{}
	first := x.AsObject(opts)
	data, err := json.Marshal(first)
	if err != nil {
		return fmt.Errorf("failed to encode object: %w", err)
	}
	decoded, err := ParseObject(data)
	if err != nil {
		return err
	}
	return compareObjects(first, fromObject(decoded).AsObject(opts))
}

// CheckMinified verifies that a minified object holds no nested object with
// an id next to its flat counterpart. Counterparts are <key>Id, <key>Ids and
// the extra pairs given as nested key -> flat key.
func CheckMinified(obj Object, pairs map[string]string) error {
	var problems []string
	for key, value := range obj {
		child := toObject(value)
		if child == nil || !child.Has("id") {
			continue
		}
		flat := []string{key + "Id", key + "Ids"}
		if extra, ok := pairs[key]; ok {
			flat = append(flat, extra)
		}
		for _, f := range flat {
			if obj.Has(f) {
				problems = append(problems, fmt.Sprintf("%s kept next to %s", key, f))
			}
		}
	}
	for nested, flat := range pairs {
		if obj.Has(nested) && obj.Has(flat) {
			problems = append(problems, fmt.Sprintf("%s kept next to %s", nested, flat))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("minified object not flat: %v", problems)
}

func compareObjects(a, b Object) error {
	ja, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode object: %w", err)
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode object: %w", err)
	}
	if !bytes.Equal(ja, jb) {
		return fmt.Errorf("round trip mismatch:\n  first:  %s\n  second: %s", ja, jb)
	}
	return nil
}
