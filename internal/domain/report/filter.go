package report

import (
	"cmp"
	"slices"
	"strings"
)

// Filter narrows a report list. Zero-valued fields impose no constraint.
type Filter struct {
	Status         Status
	SubcommitteeID int64
	ResolutionID   int64
	SearchTerm     string
}

func (f Filter) Empty() bool {
	return f.Status == "" && f.SubcommitteeID == 0 && f.ResolutionID == 0 && strings.TrimSpace(f.SearchTerm) == ""
}

func (f Filter) Match(r Report) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.SubcommitteeID != 0 && r.SubcommitteeID() != f.SubcommitteeID {
		return false
	}
	if f.ResolutionID != 0 && r.ResolutionID() != f.ResolutionID {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.SearchTerm))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.ResolutionTitle()), term) ||
		strings.Contains(strings.ToLower(r.SubmitterName()), term)
}

// ApplyFilter returns the matching reports in a new slice; reports is left untouched.
func ApplyFilter(reports []Report, f Filter) []Report {
	out := make([]Report, 0, len(reports))
	for _, r := range reports {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

type SortField string

const (
	SortBySubmittedAt  SortField = "submittedAt"
	SortByPerformance  SortField = "performancePercentage"
	SortByStatus       SortField = "status"
	SortByResolution   SortField = "resolution"
	SortBySubcommittee SortField = "subcommittee"
	SortBySubmitter    SortField = "submittedBy"
	SortByID           SortField = "id"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseSort maps query values onto a known field and direction, defaulting to newest first.
func ParseSort(field, dir string) (SortField, Direction) {
	f := SortField(field)
	switch f {
	case SortBySubmittedAt, SortByPerformance, SortByStatus, SortByResolution, SortBySubcommittee, SortBySubmitter, SortByID:
	default:
		f = SortBySubmittedAt
	}
	d := Direction(strings.ToLower(dir))
	if d != Asc && d != Desc {
		d = Desc
	}
	return f, d
}

// Sort returns a stably ordered copy of reports.
func Sort(reports []Report, field SortField, dir Direction) []Report {
	out := slices.Clone(reports)
	compare := comparator(field)
	slices.SortStableFunc(out, func(a, b Report) int {
		if dir == Desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out
}

func comparator(field SortField) func(a, b Report) int {
	switch field {
	case SortByPerformance:
		return func(a, b Report) int { return cmp.Compare(a.PerformancePercentage, b.PerformancePercentage) }
	case SortByStatus:
		return byText(func(r Report) string { return string(r.Status) })
	case SortByResolution:
		return byText(Report.ResolutionTitle)
	case SortBySubcommittee:
		return byText(Report.SubcommitteeName)
	case SortBySubmitter:
		return byText(Report.SubmitterName)
	case SortByID:
		return func(a, b Report) int { return cmp.Compare(a.ID, b.ID) }
	default:
		return func(a, b Report) int { return a.SubmittedAt.Compare(b.SubmittedAt.Time) }
	}
}

func byText(key func(Report) string) func(a, b Report) int {
	return func(a, b Report) int {
		return strings.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
	}
}
