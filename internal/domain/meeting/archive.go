package meeting

import (
	"slices"
	"strings"
)

// ArchiveFilter narrows the archive of completed meetings. Zero values match everything.
type ArchiveFilter struct {
	Year       int
	SearchTerm string
}

// Archive returns the completed meetings matching f, newest first.
func Archive(list []Meeting, f ArchiveFilter) []Meeting {
	term := strings.ToLower(strings.TrimSpace(f.SearchTerm))
	out := make([]Meeting, 0, len(list))
	for _, m := range list {
		if m.Status != StatusCompleted {
			continue
		}
		if f.Year != 0 && m.MeetingDate.Year() != f.Year {
			continue
		}
		if term != "" && !m.matches(term) {
			continue
		}
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b Meeting) int { return b.MeetingDate.Compare(a.MeetingDate.Time) })
	return out
}

func (m Meeting) matches(term string) bool {
	fields := []string{m.Title, m.Description, string(m.MeetingType), m.MeetingType.Label(), m.Location}
	if m.HostingCountry != nil {
		fields = append(fields, m.HostingCountry.Name)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// ArchiveYears lists the years that hold a completed meeting, most recent first.
func ArchiveYears(list []Meeting) []int {
	var years []int
	for _, m := range list {
		if m.Status == StatusCompleted && !m.MeetingDate.IsZero() && !slices.Contains(years, m.MeetingDate.Year()) {
			years = append(years, m.MeetingDate.Year())
		}
	}
	slices.Sort(years)
	slices.Reverse(years)
	return years
}
