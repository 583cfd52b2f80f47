package metrics

import (
    "fmt"
    "sort"
)

// ChartPoint is the flat {name, value} tuple shape the presentation layer
// plots directly.
type ChartPoint struct {
    Name  string  `json:"name"`
    Value float64 `json:"value"`
}

func sortedPoints(m map[string]float64) []ChartPoint {
    out := make([]ChartPoint, 0, len(m))
    for k, v := range m { out = append(out, ChartPoint{Name: k, Value: round2(v)}) }
    sort.SliceStable(out, func(a, b int) bool {
        if out[a].Value != out[b].Value { return out[a].Value > out[b].Value }
        return out[a].Name < out[b].Name
    })
    return out
}

// ProjectHoursChart flattens per-project totals for plotting.
func ProjectHoursChart(r ProjectReport) []ChartPoint {
    out := make([]ChartPoint, 0, len(r.Projects))
    for _, p := range r.Projects {
        out = append(out, ChartPoint{Name: p.ProjectName, Value: p.TotalHours})
    }
    return out
}

// WorkTypeChart aggregates every user's work-type split into one pie.
func WorkTypeChart(r WorkloadReport) []ChartPoint {
    acc := map[string]float64{}
    for _, u := range r.Users {
        for wt, h := range u.WorkTypeHours { acc[wt] += h }
    }
    return sortedPoints(acc)
}

// UtilizationChart is one bar per user: utilization rate in percent.
func UtilizationChart(r WorkloadReport) []ChartPoint {
    out := make([]ChartPoint, 0, len(r.Users))
    for _, u := range r.Users {
        name := u.FullName
        if name == "" { name = u.Email }
        out = append(out, ChartPoint{Name: name, Value: u.UtilizationRate})
    }
    return out
}

// WorkloadTable is the per-user detail projection.
func WorkloadTable(r WorkloadReport) ([]string, [][]string) {
    header := []string{"User", "Logged (h)", "Available (h)", "Utilization (%)", "Overtime (h)", "Idle (h)", "Leaves"}
    rows := make([][]string, 0, len(r.Users))
    for _, u := range r.Users {
        name := u.FullName
        if name == "" { name = u.Email }
        rows = append(rows, []string{
            name,
            fmt.Sprintf("%.2f", u.TotalLoggedHours),
            fmt.Sprintf("%.2f", u.AvailableHours),
            fmt.Sprintf("%.2f", u.UtilizationRate),
            fmt.Sprintf("%.2f", u.OvertimeHours),
            fmt.Sprintf("%.2f", u.IdleHours),
            fmt.Sprintf("%d", u.LeaveCount),
        })
    }
    return header, rows
}

// ProjectTable is the per-project detail projection.
func ProjectTable(r ProjectReport) ([]string, [][]string) {
    header := []string{"Project", "Hours", "FTE", "Effort Share (%)", "Contributors", "Health"}
    rows := make([][]string, 0, len(r.Projects))
    for _, p := range r.Projects {
        rows = append(rows, []string{
            p.ProjectName,
            fmt.Sprintf("%.2f", p.TotalHours),
            fmt.Sprintf("%.2f", p.FTE),
            fmt.Sprintf("%.2f", p.EffortShare),
            fmt.Sprintf("%d", p.Contributors),
            p.Health,
        })
    }
    return header, rows
}
