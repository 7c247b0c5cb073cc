// Package dashboard aggregates lead statistics for the CRM overview screen.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"admissions_crm_backend/platform/apperr"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Time filters accepted by the dashboard endpoint.
const (
	FilterWeek  = "7d"
	FilterMonth = "30d"
	FilterAll   = "all"
)

// IsKnownFilter reports whether the filter is one of the accepted windows.
func IsKnownFilter(filter string) bool {
	return filter == FilterWeek || filter == FilterMonth || filter == FilterAll
}

// DailyCount is one point of the lead intake trend.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Stats is the aggregate snapshot served to the dashboard.
type Stats struct {
	TotalLeads        int            `json:"totalLeads"`
	ConvertedLeads    int            `json:"convertedLeads"`
	ConversionRate    float64        `json:"conversionRate"`
	StageDistribution map[string]int `json:"stageDistribution"`
	DailyTrend        []DailyCount   `json:"dailyTrend"`
	Filter            string         `json:"filter"`
	GeneratedAt       time.Time      `json:"generatedAt"`
}

// Repository computes dashboard aggregates over the leads table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a dashboard repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Compute builds the aggregate snapshot for one time window. Conversion
// counts leads that reached the CONSULTED or PAID stage.
func (r *Repository) Compute(ctx context.Context, filter string) (Stats, error) {
	where, args := windowClause(filter)

	stats := Stats{
		StageDistribution: map[string]int{},
		DailyTrend:        []DailyCount{},
		Filter:            filter,
		GeneratedAt:       time.Now().UTC(),
	}

	rows, err := r.pool.Query(ctx,
		"SELECT stage, COUNT(*) FROM leads "+where+" GROUP BY stage", args...)
	if err != nil {
		return Stats{}, apperr.Internal(fmt.Sprintf("stage distribution query failed: %v", err)).WithOp("dashboard.Compute")
	}
	defer rows.Close()

	for rows.Next() {
		var stage string
		var count int
		if err := rows.Scan(&stage, &count); err != nil {
			return Stats{}, apperr.Internal(fmt.Sprintf("scan stage count failed: %v", err)).WithOp("dashboard.Compute")
		}
		stats.StageDistribution[stage] = count
		stats.TotalLeads += count
		if stage == "CONSULTED" || stage == "PAID" {
			stats.ConvertedLeads += count
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, apperr.Internal(fmt.Sprintf("stage distribution rows failed: %v", err)).WithOp("dashboard.Compute")
	}

	if stats.TotalLeads > 0 {
		stats.ConversionRate = float64(stats.ConvertedLeads) / float64(stats.TotalLeads)
	}

	trendRows, err := r.pool.Query(ctx, `
		SELECT to_char(created_at::date, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM leads `+where+`
		GROUP BY day
		ORDER BY day ASC
	`, args...)
	if err != nil {
		return Stats{}, apperr.Internal(fmt.Sprintf("daily trend query failed: %v", err)).WithOp("dashboard.Compute")
	}
	defer trendRows.Close()

	for trendRows.Next() {
		var point DailyCount
		if err := trendRows.Scan(&point.Date, &point.Count); err != nil {
			return Stats{}, apperr.Internal(fmt.Sprintf("scan daily trend failed: %v", err)).WithOp("dashboard.Compute")
		}
		stats.DailyTrend = append(stats.DailyTrend, point)
	}
	if err := trendRows.Err(); err != nil {
		return Stats{}, apperr.Internal(fmt.Sprintf("daily trend rows failed: %v", err)).WithOp("dashboard.Compute")
	}

	return stats, nil
}

func windowClause(filter string) (string, []interface{}) {
	switch filter {
	case FilterWeek:
		return "WHERE created_at >= $1", []interface{}{time.Now().UTC().AddDate(0, 0, -7)}
	case FilterMonth:
		return "WHERE created_at >= $1", []interface{}{time.Now().UTC().AddDate(0, 0, -30)}
	default:
		return "", nil
	}
}
