package types

// TagIgnore is the reserved tag that causes a test to be reported as
// ignored rather than executed. It still appears in name and tag
// enumeration; only execution is suppressed.
const TagIgnore = "Ignore"

// Filter selects the subset of registered tests to run. A test is selected
// iff (Include is nil OR its tags intersect Include) AND its tags do not
// intersect Exclude. A nil Include means "no include constraint"; an empty
// non-nil Include selects nothing.
type Filter struct {
	Include []string // tags to include; nil means absent
	Exclude []string // tags to exclude
}

// Selects reports whether a test with the given effective tag set passes
// the filter. The ignore tag plays no special role here; ignored tests are
// still selected and reported as ignored by the dispatcher.
func (f Filter) Selects(tags map[string]bool) bool {
	if f.Include != nil && !intersects(tags, f.Include) {
		return false
	}
	return !intersects(tags, f.Exclude)
}

func intersects(tags map[string]bool, names []string) bool {
	for _, name := range names {
		if tags[name] {
			return true
		}
	}
	return false
}

// TagSet builds a tag set from a list of tag names.
func TagSet(names ...string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
