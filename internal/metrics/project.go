package metrics

import (
    "sort"
    "time"

    "github.com/teamlens/teamlens/internal/domain"
)

// Health classification bands over FTE.
const (
    HealthAtCapacity    = "at capacity"
    HealthModerate      = "moderate"
    HealthUnderCapacity = "under capacity"
)

type TrendPoint struct {
    Date        string  `json:"date"`
    Hours       float64 `json:"hours"`
    Utilization float64 `json:"utilization"`
}

type ForecastPoint struct {
    Date           string  `json:"date"`
    ProjectedHours float64 `json:"projectedHours"`
    CapacityGap    float64 `json:"capacityGap"`
}

type ProjectHealth struct {
    ProjectID           string          `json:"projectId"`
    ProjectName         string          `json:"projectName"`
    TotalHours          float64         `json:"totalHours"`
    FTE                 float64         `json:"fte"`
    EffortShare         float64         `json:"effortShare"`
    Contributors        int             `json:"userCount"`
    AverageHoursPerUser float64         `json:"averageHoursPerUser"`
    Health              string          `json:"health"`
    Trend               []TrendPoint    `json:"utilizationTrend"`
    Forecast            []ForecastPoint `json:"capacityForecast"`
}

type ProjectReport struct {
    Projects           []ProjectHealth `json:"projects"`
    AtCapacity         int             `json:"atCapacityCount"`
    UnderCapacity      int             `json:"underCapacityCount"`
    AverageEffortShare float64         `json:"averageEffortShare"`
    TotalFTE           float64         `json:"totalFTE"`
    TotalHours         float64         `json:"totalHours"`
}

// ComputeProjects derives per-project FTE, effort share, trend and a forward
// capacity forecast. The forecast is a flat-trend extrapolation: the mean of
// the trailing working days is projected unchanged across the horizon, no
// regression is fitted.
func ComputeProjects(snap domain.Snapshot, f domain.Filter, p Policy) ProjectReport {
    scope := f.ScopeUsers(snap.Users, snap.Teams)
    scoped := map[string]struct{}{}
    for _, u := range scope { scoped[u.Email] = struct{}{} }
    projName := map[string]string{}
    for _, pr := range snap.Projects { projName[pr.ID] = pr.Name }

    from, to := dateOf(f.From), dateOf(f.To)
    wd := WorkingDays(from, to)
    periodCapacity := p.DailyCapacityHours * float64(wd)
    teamCapacity := float64(len(scope)) * periodCapacity

    var logs []domain.WorkLog
    for _, l := range snap.WorkLogs {
        if _, ok := scoped[l.UserEmail]; !ok { continue }
        d := dateOf(l.StartedAt)
        if d.Before(from) || d.After(to) { continue }
        if !f.ProjectSelected(l.ProjectID) { continue }
        logs = append(logs, l)
    }

    // Explicitly selected projects appear even with zero activity.
    byProject := GroupBy(logs, func(l domain.WorkLog) string { return l.ProjectID })
    for _, id := range f.Projects {
        if _, ok := byProject[id]; !ok { byProject[id] = nil }
    }

    ids := make([]string, 0, len(byProject))
    for id := range byProject { ids = append(ids, id) }
    sort.Strings(ids)

    report := ProjectReport{Projects: make([]ProjectHealth, 0, len(ids))}
    var totalHours, totalFTE, shareSum float64

    for _, id := range ids {
        plogs := byProject[id]
        var secs int64
        users := map[string]struct{}{}
        for _, l := range plogs {
            secs += l.Seconds
            users[l.UserEmail] = struct{}{}
        }
        hours := float64(secs) / 3600

        fte := 0.0
        if periodCapacity > 0 { fte = hours / periodCapacity }
        share := 0.0
        if teamCapacity > 0 { share = hours / teamCapacity * 100 }
        avgPerUser := 0.0
        if len(users) > 0 { avgPerUser = hours / float64(len(users)) }

        health := HealthUnderCapacity
        switch {
        case fte >= 1:
            health = HealthAtCapacity
            report.AtCapacity++
        case fte >= 0.5:
            health = HealthModerate
        default:
            report.UnderCapacity++
        }

        byDay := SumBy(plogs,
            func(l domain.WorkLog) string { return dayKey(l.StartedAt) },
            func(l domain.WorkLog) float64 { return float64(l.Seconds) / 3600 })
        var trend []TrendPoint
        var workingHours []float64 // per working day, unrounded, range order
        eachDay(from, to, func(d time.Time) {
            hrs := byDay[dayKey(d)]
            util := 0.0
            if p.DailyCapacityHours > 0 { util = hrs / p.DailyCapacityHours * 100 }
            trend = append(trend, TrendPoint{Date: dayKey(d), Hours: round2(hrs), Utilization: round2(util)})
            if !isWeekend(d) { workingHours = append(workingHours, hrs) }
        })

        if len(workingHours) > p.TrailingWindowDays {
            workingHours = workingHours[len(workingHours)-p.TrailingWindowDays:]
        }
        avgDaily := 0.0
        if len(workingHours) > 0 {
            sum := 0.0
            for _, h := range workingHours { sum += h }
            avgDaily = sum / float64(len(workingHours))
        }
        gap := p.DailyCapacityHours - avgDaily
        if gap < 0 { gap = 0 }
        forecast := make([]ForecastPoint, 0, p.ForecastDays)
        for i := 1; i <= p.ForecastDays; i++ {
            forecast = append(forecast, ForecastPoint{
                Date:           dayKey(to.AddDate(0, 0, i)),
                ProjectedHours: round2(avgDaily),
                CapacityGap:    round2(gap),
            })
        }

        report.Projects = append(report.Projects, ProjectHealth{
            ProjectID:           id,
            ProjectName:         displayName(projName[id], id),
            TotalHours:          round2(hours),
            FTE:                 round2(fte),
            EffortShare:         round2(share),
            Contributors:        len(users),
            AverageHoursPerUser: round2(avgPerUser),
            Health:              health,
            Trend:               trend,
            Forecast:            forecast,
        })
        totalHours += hours
        totalFTE += fte
        shareSum += share
    }

    sort.SliceStable(report.Projects, func(a, b int) bool {
        return report.Projects[a].TotalHours > report.Projects[b].TotalHours
    })

    if n := len(report.Projects); n > 0 {
        report.AverageEffortShare = round2(shareSum / float64(n))
    }
    report.TotalFTE = round2(totalFTE)
    report.TotalHours = round2(totalHours)
    return report
}

func displayName(name, fallback string) string {
    if name != "" { return name }
    if fallback != "" { return fallback }
    return UnknownKey
}
