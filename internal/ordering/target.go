package ordering

import (
	"fmt"
	"regexp"
)

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Target is a table whose rows carry an integer rank
type Target struct {
	Name         string
	Table        string
	RankColumn   string
	ScopeColumns []string
}

// Ranked collections of the site
var (
	PageSections = Target{Name: "page_sections", Table: "page_contents", RankColumn: "list_order", ScopeColumns: []string{"page_id"}}
	Banners      = Target{Name: "banners", Table: "banners", RankColumn: "list_order"}
	Pages        = Target{Name: "pages", Table: "pages", RankColumn: "list_order", ScopeColumns: []string{"type"}}
	Navigations  = Target{Name: "navigations", Table: "navigations", RankColumn: "list_order", ScopeColumns: []string{"parent_id"}}
	Photos       = Target{Name: "photos", Table: "photos", RankColumn: "list_order", ScopeColumns: []string{"resource_type", "resource_id"}}
	Videos       = Target{Name: "videos", Table: "videos", RankColumn: "list_order", ScopeColumns: []string{"resource_type", "resource_id"}}
)

// Validate checks that every name of the target is a plain SQL identifier
func (t Target) Validate() error {
	names := append([]string{t.Table, t.RankColumn}, t.ScopeColumns...)
	for _, name := range names {
		if !identifier.MatchString(name) {
			return fmt.Errorf("invalid identifier %q in target %s", name, t.Name)
		}
	}
	return nil
}

// Scope holds the values of a target's scope columns, e.g. {"page_id": 3}.
// Columns missing from the scope are not constrained.
type Scope map[string]any

// Conditions returns the scope columns that have a value, in target order, with their values
func (s Scope) Conditions(t Target) ([]string, []any) {
	var columns []string
	var values []any
	for _, column := range t.ScopeColumns {
		if v, ok := s[column]; ok {
			columns = append(columns, column)
			values = append(values, v)
		}
	}
	return columns, values
}
