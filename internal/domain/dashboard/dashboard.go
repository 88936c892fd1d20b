// Package dashboard holds the aggregate statistics the backend computes for the role dashboards.
package dashboard

// Summary is the headline block of the performance dashboard.
type Summary struct {
	TotalReports       int     `json:"totalReports"`
	ApprovedReports    int     `json:"approvedReports"`
	RejectedReports    int     `json:"rejectedReports"`
	PendingReports     int     `json:"pendingReports"`
	AveragePerformance float64 `json:"averagePerformance"`
	TotalSubcommittees int     `json:"totalSubcommittees"`
	ActiveResolutions  int     `json:"activeResolutions"`
}

type SubcommitteePerformance struct {
	Name           string  `json:"name"`
	AvgPerformance float64 `json:"avgPerformance"`
	ReportCount    int     `json:"reportCount"`
	Trend          string  `json:"trend"` // up, stable or down
}

type MonthlyTrend struct {
	Labels         []string  `json:"labels"`
	Approved       []int     `json:"approved"`
	Rejected       []int     `json:"rejected"`
	Pending        []int     `json:"pending,omitempty"`
	AvgPerformance []float64 `json:"avgPerformance,omitempty"`
}

// Empty reports whether the trend has no data points.
func (m MonthlyTrend) Empty() bool {
	return len(m.Labels) == 0
}

type ResolutionProgress struct {
	Resolution    string  `json:"resolution"`
	Progress      float64 `json:"progress"`
	Subcommittees int     `json:"subcommittees"`
}

// Distribution buckets reports by performance label.
type Distribution struct {
	Excellent    int `json:"excellent"`
	VeryGood     int `json:"veryGood"`
	Good         int `json:"good"`
	Satisfactory int `json:"satisfactory"`
	Poor         int `json:"poor"`
}

func (d Distribution) Total() int {
	return d.Excellent + d.VeryGood + d.Good + d.Satisfactory + d.Poor
}

// Performance is the comprehensive payload of GET /dashboard/performance.
type Performance struct {
	Summary                 Summary                   `json:"summary"`
	SubcommitteePerformance []SubcommitteePerformance `json:"subcommitteePerformance"`
	MonthlyTrend            MonthlyTrend              `json:"monthlyTrend"`
	ResolutionProgress      []ResolutionProgress      `json:"resolutionProgress"`
	Distribution            Distribution              `json:"performanceDistribution"`
}

// Stats is the reviewer-scoped payload of GET /dashboard/performance/stats.
type Stats struct {
	PendingReports          int                       `json:"pendingReports"`
	ApprovedThisMonth       int                       `json:"approvedThisMonth"`
	RejectedThisMonth       int                       `json:"rejectedThisMonth"`
	AveragePerformance      float64                   `json:"averagePerformance"`
	ActiveResolutions       int                       `json:"activeResolutions"`
	TotalSubcommittees      int                       `json:"totalSubcommittees"`
	SubcommitteePerformance []SubcommitteePerformance `json:"subcommitteePerformance"`
	MonthlyTrend            MonthlyTrend              `json:"monthlyTrend"`
}

// StatsScope selects whose queue the stats are computed for.
type StatsScope struct {
	HODID          int64
	CommissionerID int64
}
