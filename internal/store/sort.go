package store

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rpattn/fishql/internal/model"
)

// SortDirection represents ordering direction for sortable attributes.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection reads a direction, case insensitive. Anything but
// "desc" sorts ascending.
func ParseSortDirection(value string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(value), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// sortKey is the comparable value of one attribute.
type sortKey struct {
	missing bool
	number  float64
	text    string
	numeric bool
}

// sortEntities orders items by the attribute key of their full object form.
// Nested references sort by label. Numbers come before text, and entities
// without the attribute come last, in both directions. Ties keep their order.
func sortEntities[E model.Entity](items []E, key string, dir SortDirection) {
	keys := make(map[int]sortKey, len(items))
	indexed := make([]int, len(items))
	for i, item := range items {
		indexed[i] = i
		keys[i] = sortKeyOf(item.AsObject(model.AsObjectOptions{}), key)
	}
	slices.SortStableFunc(indexed, func(a, b int) int {
		ka, kb := keys[a], keys[b]
		if ka.missing || kb.missing {
			switch {
			case ka.missing && kb.missing:
				return 0
			case ka.missing:
				return 1
			default:
				return -1
			}
		}
		if ka.numeric != kb.numeric {
			if ka.numeric {
				return -1
			}
			return 1
		}
		var c int
		if ka.numeric {
			c = cmp.Compare(ka.number, kb.number)
		} else {
			c = strings.Compare(ka.text, kb.text)
		}
		if dir == SortDesc {
			return -c
		}
		return c
	})
	sorted := make([]E, len(items))
	for i, idx := range indexed {
		sorted[i] = items[idx]
	}
	copy(items, sorted)
}

func sortKeyOf(obj model.Object, key string) sortKey {
	if !obj.Has(key) {
		return sortKey{missing: true}
	}
	if f := obj.Float(key); f != nil {
		return sortKey{number: *f, numeric: true}
	}
	if child := obj.Child(key); child != nil {
		if label := child.String("label"); label != "" {
			return sortKey{text: strings.ToLower(label)}
		}
		if id := child.Float("id"); id != nil {
			return sortKey{number: *id, numeric: true}
		}
		return sortKey{missing: true}
	}
	// ISO-8601 dates in UTC sort as text.
	if s := obj.String(key); s != "" {
		return sortKey{text: strings.ToLower(s)}
	}
	return sortKey{missing: true}
}
