package pages

import (
	"context"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type DashboardView struct {
	Summary  aggregate.SummaryView
	Empty    bool
	Error    string
	Redirect string
}

type StatisticsView struct {
	Stats    aggregate.StatisticsView
	Range    core.TimeRange
	Ranges   []core.TimeRange
	Empty    bool
	Error    string
	Redirect string
}

var timeRanges = []core.TimeRange{core.Week, core.Month, core.Year}

func (c *Controller) Dashboard(ctx context.Context) DashboardView {
	s, err := c.api.Summary(ctx)
	if err == nil {
		var view aggregate.SummaryView
		if view, err = aggregate.BuildSummary(s); err == nil {
			return DashboardView{Summary: view, Empty: len(view.Series) == 0 && len(view.Distribution) == 0}
		}
	}
	msg, redirect, _ := c.failure(ctx, log.OpRead, err)
	return DashboardView{Empty: true, Error: msg, Redirect: redirect}
}

// Statistics shows per-category flows for the range named in the query
// string, month when it is empty.
func (c *Controller) Statistics(ctx context.Context, rawRange string) StatisticsView {
	tr, err := core.ParseTimeRange(rawRange)
	if err != nil {
		return StatisticsView{Range: core.Month, Ranges: timeRanges, Empty: true, Error: err.Error()}
	}

	st, err := c.api.Statistics(ctx, tr)
	if err == nil {
		var view aggregate.StatisticsView
		if view, err = aggregate.BuildStatistics(st); err == nil {
			return StatisticsView{Stats: view, Range: tr, Ranges: timeRanges, Empty: len(view.Rows) == 0}
		}
	}
	c.logger.DebugContext(ctx, "Statistics unavailable", log.FieldTimeRange, string(tr))
	msg, redirect, _ := c.failure(ctx, log.OpRead, err)
	return StatisticsView{Range: tr, Ranges: timeRanges, Empty: true, Error: msg, Redirect: redirect}
}
