package metrics

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestWorkTypeChartAggregatesUsers(t *testing.T) {
    r := WorkloadReport{Users: []UserWorkload{
        {Email: "a@x.io", WorkTypeHours: map[string]float64{"Development": 6, "Incident": 2}},
        {Email: "b@x.io", WorkTypeHours: map[string]float64{"Development": 4}},
    }}
    pts := WorkTypeChart(r)
    require.Len(t, pts, 2)
    assert.Equal(t, ChartPoint{Name: "Development", Value: 10}, pts[0])
    assert.Equal(t, ChartPoint{Name: "Incident", Value: 2}, pts[1])
}

func TestWorkloadTableShape(t *testing.T) {
    r := ComputeWorkload(twoUserSnapshot(), weekFilter(), DefaultPolicy())
    header, rows := WorkloadTable(r)
    require.Len(t, rows, 2)
    assert.Len(t, rows[0], len(header))
    assert.Equal(t, "Alice", rows[0][0])
    assert.Equal(t, "100.00", rows[0][3])
}

func TestDashboardComputeIdempotent(t *testing.T) {
    snap := twoUserSnapshot()
    first := Compute(snap, weekFilter(), DefaultPolicy())
    second := Compute(snap, weekFilter(), DefaultPolicy())
    assert.Equal(t, first, second)
}
