package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"eara_connect_portal/internal/domain/dashboard"
)

func (c *Client) PerformanceStats(ctx context.Context, scope dashboard.StatsScope) (*dashboard.Stats, error) {
	q := url.Values{}
	if scope.HODID != 0 {
		q.Set("hodId", strconv.FormatInt(scope.HODID, 10))
	}
	if scope.CommissionerID != 0 {
		q.Set("commissionerId", strconv.FormatInt(scope.CommissionerID, 10))
	}
	var out dashboard.Stats
	if err := c.do(ctx, http.MethodGet, "/dashboard/performance/stats", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Performance fetches the comprehensive dashboard; timeFilter is one of the backend's windows ("3months" by default).
func (c *Client) Performance(ctx context.Context, timeFilter string) (*dashboard.Performance, error) {
	q := url.Values{}
	if timeFilter != "" {
		q.Set("timeFilter", timeFilter)
	}
	var out dashboard.Performance
	if err := c.do(ctx, http.MethodGet, "/dashboard/performance", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubcommitteePerformance(ctx context.Context) ([]dashboard.SubcommitteePerformance, error) {
	var out struct {
		SubcommitteePerformance []dashboard.SubcommitteePerformance `json:"subcommitteePerformance"`
	}
	if err := c.do(ctx, http.MethodGet, "/dashboard/subcommittee-performance", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.SubcommitteePerformance, nil
}

func (c *Client) ResolutionProgress(ctx context.Context) ([]dashboard.ResolutionProgress, error) {
	var out struct {
		ResolutionProgress []dashboard.ResolutionProgress `json:"resolutionProgress"`
	}
	if err := c.do(ctx, http.MethodGet, "/dashboard/resolution-progress", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.ResolutionProgress, nil
}

func (c *Client) MonthlyTrends(ctx context.Context, months int) (*dashboard.MonthlyTrend, error) {
	q := url.Values{}
	if months > 0 {
		q.Set("months", strconv.Itoa(months))
	}
	var out struct {
		MonthlyTrend dashboard.MonthlyTrend `json:"monthlyTrend"`
	}
	if err := c.do(ctx, http.MethodGet, "/dashboard/monthly-trends", q, nil, &out); err != nil {
		return nil, err
	}
	return &out.MonthlyTrend, nil
}

func (c *Client) AvailableYears(ctx context.Context) ([]int, error) {
	var out []int
	if err := c.do(ctx, http.MethodGet, "/dashboard/available-years", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
