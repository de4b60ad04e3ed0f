package backend

import (
	"fmt"
	"strings"
)

// Filter expression syntax shared by adapters and query builders:
// predicate groups are joined by ';' (AND), alternatives within a group by
// ',' (OR). Each predicate is field=op=value where op is "contains" or
// "eq". Example:
//
//	title=contains=weekly;type=eq=schedule,type=eq=trigger
const (
	OpContains = "contains"
	OpEq       = "eq"
)

type Predicate struct {
	Field string
	Op    string
	Value string
}

// Group is a set of OR-joined alternatives.
type Group []Predicate

// BuildFilterExpr renders groups into the expression syntax. Empty groups
// are skipped.
func BuildFilterExpr(groups []Group) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		alts := make([]string, 0, len(g))
		for _, p := range g {
			alts = append(alts, fmt.Sprintf("%s=%s=%s", p.Field, p.Op, escapeExprValue(p.Value)))
		}
		parts = append(parts, strings.Join(alts, ","))
	}
	return strings.Join(parts, ";")
}

// ParseFilterExpr parses the expression back into groups. Adapters use this
// to translate one grammar into their native query language.
func ParseFilterExpr(expr string) ([]Group, error) {
	if expr == "" {
		return nil, nil
	}
	var groups []Group
	for _, part := range strings.Split(expr, ";") {
		var group Group
		for _, alt := range strings.Split(part, ",") {
			fields := strings.SplitN(alt, "=", 3)
			if len(fields) != 3 {
				return nil, fmt.Errorf("backend: malformed filter predicate %q", alt)
			}
			op := fields[1]
			if op != OpContains && op != OpEq {
				return nil, fmt.Errorf("backend: unknown filter operator %q", op)
			}
			group = append(group, Predicate{
				Field: fields[0],
				Op:    op,
				Value: unescapeExprValue(fields[2]),
			})
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func escapeExprValue(v string) string {
	r := strings.NewReplacer("\\", "\\\\", ";", "\\s", ",", "\\c", "=", "\\e")
	return r.Replace(v)
}

func unescapeExprValue(v string) string {
	r := strings.NewReplacer("\\\\", "\\", "\\s", ";", "\\c", ",", "\\e", "=")
	return r.Replace(v)
}
