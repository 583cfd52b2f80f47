package metrics

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/teamlens/teamlens/internal/domain"
)

func TestProjectFTEAndEffortShare(t *testing.T) {
    // 5 working days, 2 users in scope: period capacity 40h, team capacity 80h.
    snap := twoUserSnapshot()
    r := ComputeProjects(snap, weekFilter(), DefaultPolicy())
    require.Len(t, r.Projects, 2)

    atlas := r.Projects[0]
    assert.Equal(t, "Atlas", atlas.ProjectName)
    assert.Equal(t, 50.0, atlas.TotalHours)
    assert.Equal(t, 1.25, atlas.FTE)
    assert.Equal(t, 62.5, atlas.EffortShare)
    assert.Equal(t, 2, atlas.Contributors)
    assert.Equal(t, 25.0, atlas.AverageHoursPerUser)
    assert.Equal(t, HealthAtCapacity, atlas.Health)

    borealis := r.Projects[1]
    assert.Equal(t, 10.0, borealis.TotalHours)
    assert.Equal(t, 0.25, borealis.FTE)
    assert.Equal(t, HealthUnderCapacity, borealis.Health)

    assert.Equal(t, 1, r.AtCapacity)
    assert.Equal(t, 1, r.UnderCapacity)
    assert.Equal(t, 60.0, r.TotalHours)
    assert.Equal(t, 1.5, r.TotalFTE)
}

func TestProjectHealthModerateBand(t *testing.T) {
    snap := domain.Snapshot{
        WorkLogs: []domain.WorkLog{wl("a@x.io", "P1", date(2024, 1, 2), 24)},
        Users:    []domain.User{{Email: "a@x.io"}},
        Projects: []domain.Project{{ID: "P1", Name: "Atlas"}},
    }
    r := ComputeProjects(snap, weekFilter(), DefaultPolicy())
    require.Len(t, r.Projects, 1)
    assert.Equal(t, 0.6, r.Projects[0].FTE) // 24h of 40h
    assert.Equal(t, HealthModerate, r.Projects[0].Health)
    assert.Zero(t, r.AtCapacity)
    assert.Zero(t, r.UnderCapacity)
}

func TestProjectUtilizationTrendPerDay(t *testing.T) {
    snap := twoUserSnapshot()
    r := ComputeProjects(snap, weekFilter(), DefaultPolicy())
    atlas := r.Projects[0]
    require.Len(t, atlas.Trend, 5)
    // Monday: Alice 8h + Bala 5h on Atlas
    assert.Equal(t, "2024-01-01", atlas.Trend[0].Date)
    assert.Equal(t, 13.0, atlas.Trend[0].Hours)
    assert.Equal(t, 162.5, atlas.Trend[0].Utilization)
}

func TestCapacityForecastFlatTrend(t *testing.T) {
    // Constant 6h on every working day; trailing window mean must be 6,
    // gap 2, held flat across all 30 forecast days.
    var logs []domain.WorkLog
    from, to := date(2024, 1, 1), date(2024, 1, 12)
    eachDay(from, to, func(d time.Time) {
        if !isWeekend(d) { logs = append(logs, wl("a@x.io", "P1", d, 6)) }
    })
    snap := domain.Snapshot{
        WorkLogs: logs,
        Users:    []domain.User{{Email: "a@x.io"}},
        Projects: []domain.Project{{ID: "P1", Name: "Atlas"}},
    }
    r := ComputeProjects(snap, domain.Filter{From: from, To: to}, DefaultPolicy())
    require.Len(t, r.Projects, 1)
    fc := r.Projects[0].Forecast
    require.Len(t, fc, 30)
    assert.Equal(t, "2024-01-13", fc[0].Date)
    assert.Equal(t, "2024-02-11", fc[29].Date)
    for _, pt := range fc {
        assert.Equal(t, 6.0, pt.ProjectedHours)
        assert.Equal(t, 2.0, pt.CapacityGap)
    }
}

func TestCapacityForecastShortRange(t *testing.T) {
    // Fewer working days than the trailing window: mean over what exists.
    snap := domain.Snapshot{
        WorkLogs: []domain.WorkLog{
            wl("a@x.io", "P1", date(2024, 1, 1), 4),
            wl("a@x.io", "P1", date(2024, 1, 2), 8),
        },
        Users:    []domain.User{{Email: "a@x.io"}},
        Projects: []domain.Project{{ID: "P1", Name: "Atlas"}},
    }
    f := domain.Filter{From: date(2024, 1, 1), To: date(2024, 1, 2)}
    r := ComputeProjects(snap, f, DefaultPolicy())
    fc := r.Projects[0].Forecast
    require.NotEmpty(t, fc)
    assert.Equal(t, 6.0, fc[0].ProjectedHours)
    assert.Equal(t, 2.0, fc[0].CapacityGap)
}

func TestProjectSelectedButIdle(t *testing.T) {
    snap := domain.Snapshot{
        Users:    []domain.User{{Email: "a@x.io"}},
        Projects: []domain.Project{{ID: "P9", Name: "Zephyr"}},
    }
    f := weekFilter()
    f.Projects = []string{"P9"}
    r := ComputeProjects(snap, f, DefaultPolicy())
    require.Len(t, r.Projects, 1)
    p := r.Projects[0]
    assert.Zero(t, p.TotalHours)
    assert.Zero(t, p.FTE)
    assert.Zero(t, p.Contributors)
    assert.Zero(t, p.AverageHoursPerUser)
    assert.Equal(t, HealthUnderCapacity, p.Health)
    // forecast still emitted: zero projection, full gap
    require.Len(t, p.Forecast, 30)
    assert.Equal(t, 8.0, p.Forecast[0].CapacityGap)
}
