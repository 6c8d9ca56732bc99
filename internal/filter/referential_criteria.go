package filter

import (
	"regexp"
	"strings"

	"github.com/rpattn/fishql/internal/model"
)

// ReferentialCriteria are the criteria shared by referential filters.
// Singular statusId, levelId and levelLabel inputs are folded into their
// plural counterparts.
type ReferentialCriteria struct {
	EntityName      string
	ID              *int
	Label           string
	Name            string
	StatusIDs       []int
	LevelIDs        []int
	LevelLabels     []string
	SearchText      string
	SearchAttribute string
	IncludedIDs     []int
	ExcludedIDs     []int
}

func readReferentialCriteria(src model.Object) ReferentialCriteria {
	c := ReferentialCriteria{
		EntityName:      src.String("entityName"),
		ID:              src.Int("id"),
		Label:           src.String("label"),
		Name:            src.String("name"),
		StatusIDs:       src.Ints("statusIds"),
		LevelIDs:        src.Ints("levelIds"),
		LevelLabels:     src.Strings("levelLabels"),
		SearchText:      src.String("searchText"),
		SearchAttribute: src.String("searchAttribute"),
		IncludedIDs:     src.Ints("includedIds"),
		ExcludedIDs:     src.Ints("excludedIds"),
	}
	c.StatusIDs = appendID(c.StatusIDs, src.Int("statusId"))
	c.LevelIDs = appendID(c.LevelIDs, src.Int("levelId"))
	c.LevelLabels = appendLabel(c.LevelLabels, src.String("levelLabel"))
	return c
}

// writeTo writes the criteria. The entity name routes the query on the
// client side only and is dropped from minified objects unless asked for.
func (c ReferentialCriteria) writeTo(target model.Object, opts model.AsObjectOptions) {
	if !opts.Minify || opts.KeepEntityName {
		target.SetString("entityName", c.EntityName)
	}
	target.SetInt("id", c.ID)
	target.SetString("label", c.Label)
	target.SetString("name", c.Name)
	target.SetInts("statusIds", c.StatusIDs)
	target.SetInts("levelIds", c.LevelIDs)
	target.SetStrings("levelLabels", c.LevelLabels)
	target.SetString("searchText", c.SearchText)
	target.SetString("searchAttribute", c.SearchAttribute)
	target.SetInts("includedIds", c.IncludedIDs)
	target.SetInts("excludedIds", c.ExcludedIDs)
}

// ReferentialPredicates builds one predicate per set criterion. The entity
// name is not a predicate: it selects which rows are loaded.
func ReferentialPredicates[E model.ReferentialLike](c ReferentialCriteria) []Predicate[E] {
	var predicates []Predicate[E]
	if c.ID != nil {
		id := *c.ID
		predicates = append(predicates, guard(func(e E) bool {
			return model.IntEquals(e.EntityID(), id)
		}))
	}
	if c.Label != "" {
		label := c.Label
		predicates = append(predicates, guard(func(e E) bool {
			return e.RefLabel() == label
		}))
	}
	if c.Name != "" {
		name := c.Name
		predicates = append(predicates, guard(func(e E) bool {
			return e.RefName() == name
		}))
	}
	if len(c.StatusIDs) > 0 {
		statusIDs := append([]int(nil), c.StatusIDs...)
		predicates = append(predicates, guard(func(e E) bool {
			return containsInt(statusIDs, e.RefStatusID())
		}))
	}
	if len(c.LevelIDs) > 0 {
		levelIDs := append([]int(nil), c.LevelIDs...)
		predicates = append(predicates, guard(func(e E) bool {
			return containsInt(levelIDs, e.RefLevelID())
		}))
	}
	if len(c.LevelLabels) > 0 {
		levelLabels := append([]string(nil), c.LevelLabels...)
		predicates = append(predicates, guard(func(e E) bool {
			return containsString(levelLabels, e.RefLevelLabel())
		}))
	}
	if len(c.IncludedIDs) > 0 {
		included := append([]int(nil), c.IncludedIDs...)
		predicates = append(predicates, guard(func(e E) bool {
			return containsInt(included, e.EntityID())
		}))
	}
	if len(c.ExcludedIDs) > 0 {
		excluded := append([]int(nil), c.ExcludedIDs...)
		predicates = append(predicates, guard(func(e E) bool {
			return !containsInt(excluded, e.EntityID())
		}))
	}
	if match := SearchMatcher(c.SearchText); match != nil {
		attribute := c.SearchAttribute
		predicates = append(predicates, guard(func(e E) bool {
			switch attribute {
			case "label":
				return match(e.RefLabel())
			case "name":
				return match(e.RefName())
			default:
				return match(e.RefLabel()) || match(e.RefName())
			}
		}))
	}
	return predicates
}

// SearchMatcher compiles a search text into a case-insensitive matcher. A
// '*' matches any run of characters. The text is anchored at the start of
// the value unless it begins with '*'. A blank text gives nil.
func SearchMatcher(text string) func(string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	pattern := "(?i)^" + strings.Join(parts, ".*")
	re := regexp.MustCompile(pattern)
	return re.MatchString
}
