package resolution

import (
	"fmt"
)

const FullAllocation = 100

// Row is one line of the assignment form. SubcommitteeID 0 means none picked yet.
type Row struct {
	SubcommitteeID         int64 `json:"subcommitteeId"`
	ContributionPercentage int   `json:"contributionPercentage"`
}

// ValidateRows lists every rule the rows break. An empty result means the rows can be submitted.
func ValidateRows(rows []Row) []string {
	if len(rows) == 0 {
		return []string{"At least one assignment is required"}
	}

	var errs []string
	if total := Total(rows); total != FullAllocation {
		errs = append(errs, fmt.Sprintf("Total contribution must equal 100%%. Current total: %d%%", total))
	}

	seen := make(map[int64]bool, len(rows))
	duplicate := false
	for _, row := range rows {
		if row.SubcommitteeID == 0 {
			continue
		}
		if seen[row.SubcommitteeID] {
			duplicate = true
		}
		seen[row.SubcommitteeID] = true
	}
	if duplicate {
		errs = append(errs, "Cannot assign the same subcommittee multiple times")
	}

	for i, row := range rows {
		if row.SubcommitteeID == 0 {
			errs = append(errs, fmt.Sprintf("Assignment %d: Subcommittee is required", i+1))
		}
		if row.ContributionPercentage < 1 || row.ContributionPercentage > FullAllocation {
			errs = append(errs, fmt.Sprintf("Assignment %d: Contribution percentage must be between 1 and 100", i+1))
		}
	}
	return errs
}

func Total(rows []Row) int {
	total := 0
	for _, row := range rows {
		total += row.ContributionPercentage
	}
	return total
}

// Remaining is what is left to allocate. It goes negative when rows already exceed 100.
func Remaining(rows []Row) int {
	return FullAllocation - Total(rows)
}

// AutoDistribute splits 100 evenly over rows; earlier rows absorb the remainder.
func AutoDistribute(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	if len(out) == 0 {
		return out
	}
	share := FullAllocation / len(out)
	remainder := FullAllocation % len(out)
	for i := range out {
		out[i].ContributionPercentage = share
		if i < remainder {
			out[i].ContributionPercentage++
		}
	}
	return out
}

// AddRow appends an empty row pre-filled with whatever share is still unallocated.
func AddRow(rows []Row) []Row {
	out := make([]Row, len(rows), len(rows)+1)
	copy(out, rows)
	return append(out, Row{ContributionPercentage: max(0, Remaining(rows))})
}

// RemoveRow drops the row at index; a lone row is kept so the form never empties.
func RemoveRow(rows []Row, index int) []Row {
	if len(rows) <= 1 || index < 0 || index >= len(rows) {
		return rows
	}
	out := make([]Row, 0, len(rows)-1)
	out = append(out, rows[:index]...)
	return append(out, rows[index+1:]...)
}

// Payload is the body of POST /resolutions/{id}/assignments.
type Payload struct {
	Assignments []Row `json:"assignments"`
}
