package interactive

import "regexp"

// Filter is a print filter (spec.md §3): a compiled regex and its
// show_only polarity. Filters gate display only, never dispatch.
type Filter struct {
	ID       int
	Pattern  string
	Regex    *regexp.Regexp
	ShowOnly bool
}

// NewFilter compiles pattern and returns a Filter, or an error if pattern
// is not a valid regular expression.
func NewFilter(id int, pattern string, showOnly bool) (*Filter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Filter{ID: id, Pattern: pattern, Regex: re, ShowOnly: showOnly}, nil
}

// ShouldHide applies spec.md §4.G's filter composition rule to text (a
// message's canonical "interface.message" name): hidden if any
// non-show_only filter matches; otherwise, if at least one show_only
// filter is installed, hidden unless some show_only filter matches.
func ShouldHide(filters []*Filter, text string) bool {
	hasShowOnly := false
	showOnlyMatched := false

	for _, f := range filters {
		matched := f.Regex.MatchString(text)
		if f.ShowOnly {
			hasShowOnly = true
			if matched {
				showOnlyMatched = true
			}
		} else if matched {
			return true
		}
	}

	return hasShowOnly && !showOnlyMatched
}
