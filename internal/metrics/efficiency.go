/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package metrics

import (
    "math"
    "sort"

    "github.com/teamlens/teamlens/internal/domain"
)

type EntityEfficiency struct {
    Name              string  `json:"name"`
    HoursLogged       float64 `json:"hoursLogged"`
    ClosedTickets     int     `json:"closedTickets"`
    WeightedTickets   float64 `json:"weightedTickets"`
    EffortOutputRatio float64 `json:"effortOutputRatio"`
    ProductivityIndex float64 `json:"productivityIndex"`
}

type DailyEfficiency struct {
    Date          string  `json:"date"`
    HoursLogged   float64 `json:"hoursLogged"`
    TicketsClosed int     `json:"ticketsClosed"`
    Efficiency    float64 `json:"efficiency"`
}

type EfficiencyReport struct {
    TotalHours           float64            `json:"totalHours"`
    ClosedTickets        int                `json:"closedTickets"`
    WeightedTickets      float64            `json:"weightedTickets"`
    EffortOutputRatio    float64            `json:"effortOutputRatio"`
    ProductivityIndex    float64            `json:"productivityIndex"`
    WorkloadBalanceIndex float64            `json:"workloadBalanceIndex"`
    QualityScore         float64            `json:"qualityScore"`
    ResponseTimeIndex    float64            `json:"responseTimeIndex"`
    OverallEfficiency    float64            `json:"overallEfficiency"`
    TicketReopeningRate  float64            `json:"ticketReopeningRate"`
    ResolutionAccuracy   float64            `json:"resolutionAccuracy"`
    PerUser              []EntityEfficiency `json:"perUser"`
    PerProject           []EntityEfficiency `json:"perProject"`
    Daily                []DailyEfficiency  `json:"daily"`
}

func priorityWeight(p Policy, priority string) float64 {
    if priority == "" { return p.DefaultPriorityWeight }
    if w, ok := p.PriorityWeights[priority]; ok { return w }
    return p.DefaultPriorityWeight
}

// popStdDev is the population standard deviation; a single-member cohort
// yields zero spread, not a division error.
func popStdDev(vals []float64, mean float64) float64 {
    if len(vals) == 0 { return 0 }
    var ss float64
    for _, v := range vals {
        d := v - mean
        ss += d * d
    }
    return math.Sqrt(ss / float64(len(vals)))
}

// ComputeEfficiency combines logged hours with tracker closure data into the
// composite indices. Every ratio is zero-guarded; the report never carries
// NaN or Inf.
func ComputeEfficiency(snap domain.Snapshot, f domain.Filter, p Policy) EfficiencyReport {
    scope := f.ScopeUsers(snap.Users, snap.Teams)
    scoped := map[string]struct{}{}
    for _, u := range scope { scoped[u.Email] = struct{}{} }
    restricted := len(f.Users) > 0 || len(f.Teams) > 0

    from, to := dateOf(f.From), dateOf(f.To)

    var logs []domain.WorkLog
    for _, l := range snap.WorkLogs {
        if _, ok := scoped[l.UserEmail]; !ok { continue }
        d := dateOf(l.StartedAt)
        if d.Before(from) || d.After(to) { continue }
        if !f.ProjectSelected(l.ProjectID) { continue }
        logs = append(logs, l)
    }

    var closed []domain.Issue
    for _, is := range snap.Issues {
        if domain.ClassifyStatus(is.Status) != domain.StatusClosed { continue }
        if !f.ProjectSelected(is.ProjectKey) { continue }
        if restricted {
            if _, ok := scoped[is.Assignee]; !ok { continue }
        }
        closed = append(closed, is)
    }

    var secs int64
    for _, l := range logs { secs += l.Seconds }
    totalHours := float64(secs) / 3600

    var weighted float64
    for _, is := range closed { weighted += priorityWeight(p, is.Priority) }

    effortOutput := 0.0
    if len(closed) > 0 { effortOutput = totalHours / float64(len(closed)) }
    productivity := 0.0
    if totalHours > 0 { productivity = weighted / totalHours }

    perUserHours := SumBy(logs,
        func(l domain.WorkLog) string { return l.UserEmail },
        func(l domain.WorkLog) float64 { return float64(l.Seconds) / 3600 })
    balance := 0.0
    if len(perUserHours) > 0 {
        var sum float64
        vals := make([]float64, 0, len(perUserHours))
        for _, h := range perUserHours { vals = append(vals, h); sum += h }
        mean := sum / float64(len(vals))
        if mean > 0 {
            balance = (1 - popStdDev(vals, mean)/mean) * 100
            if balance < 0 { balance = 0 }
        }
    }

    quality := math.Round(productivity*p.QualityProductivityW +
        balance*p.QualityBalanceW +
        (100-effortOutput*10)*p.QualityEffortW)

    response := 100.0
    if len(closed) > 0 {
        var daysSum float64
        for _, is := range closed {
            d := math.Floor(is.UpdatedAt.Sub(is.CreatedAt).Hours() / 24)
            if d < 0 { d = 0 }
            daysSum += d
        }
        avgDays := daysSum / float64(len(closed))
        response = 100 - avgDays*p.ResponsePenaltyPerDay
        if response < 0 { response = 0 }
    }

    overall := math.Round(productivity*p.OverallProductivityW +
        balance*p.OverallBalanceW +
        quality*p.OverallQualityW +
        response*p.OverallResponseW)

    report := EfficiencyReport{
        TotalHours:           round2(totalHours),
        ClosedTickets:        len(closed),
        WeightedTickets:      round2(weighted),
        EffortOutputRatio:    round2(effortOutput),
        ProductivityIndex:    round2(productivity),
        WorkloadBalanceIndex: round2(balance),
        QualityScore:         quality,
        ResponseTimeIndex:    round2(response),
        OverallEfficiency:    overall,
        TicketReopeningRate:  p.TicketReopeningRate,
        ResolutionAccuracy:   p.ResolutionAccuracy,
    }

    report.PerUser = entityBreakdown(p,
        perUserHours,
        GroupBy(closed, func(is domain.Issue) string {
            if is.Assignee == "" { return domain.Unassigned }
            return is.Assignee
        }))

    projName := map[string]string{}
    for _, pr := range snap.Projects { projName[pr.ID] = pr.Name }
    report.PerProject = entityBreakdown(p,
        SumBy(logs,
            func(l domain.WorkLog) string { return projName[l.ProjectID] },
            func(l domain.WorkLog) float64 { return float64(l.Seconds) / 3600 }),
        GroupBy(closed, func(is domain.Issue) string {
            if is.ProjectName != "" { return is.ProjectName }
            return projName[is.ProjectKey]
        }))

    report.Daily = dailyEfficiency(logs, closed)
    return report
}

// entityBreakdown repeats the effort/productivity ratios scoped to one entity:
// its hours against its closed tickets.
func entityBreakdown(p Policy, hours map[string]float64, closed map[string][]domain.Issue) []EntityEfficiency {
    names := map[string]struct{}{}
    for n := range hours { names[n] = struct{}{} }
    for n := range closed { names[n] = struct{}{} }

    out := make([]EntityEfficiency, 0, len(names))
    for n := range names {
        h := hours[n]
        issues := closed[n]
        var w float64
        for _, is := range issues { w += priorityWeight(p, is.Priority) }
        ratio := 0.0
        if len(issues) > 0 { ratio = h / float64(len(issues)) }
        prod := 0.0
        if h > 0 { prod = w / h }
        out = append(out, EntityEfficiency{
            Name:              n,
            HoursLogged:       round2(h),
            ClosedTickets:     len(issues),
            WeightedTickets:   round2(w),
            EffortOutputRatio: round2(ratio),
            ProductivityIndex: round2(prod),
        })
    }
    sort.SliceStable(out, func(a, b int) bool {
        if out[a].HoursLogged != out[b].HoursLogged { return out[a].HoursLogged > out[b].HoursLogged }
        return out[a].Name < out[b].Name
    })
    return out
}

// dailyEfficiency merges per-day hours (keyed by log start date) with per-day
// closures (keyed by issue updated date).
func dailyEfficiency(logs []domain.WorkLog, closed []domain.Issue) []DailyEfficiency {
    hours := SumBy(logs,
        func(l domain.WorkLog) string { return dayKey(l.StartedAt) },
        func(l domain.WorkLog) float64 { return float64(l.Seconds) / 3600 })
    tickets := map[string]int{}
    for _, is := range closed { tickets[dayKey(is.UpdatedAt)]++ }

    dates := map[string]struct{}{}
    for d := range hours { dates[d] = struct{}{} }
    for d := range tickets { dates[d] = struct{}{} }
    keys := make([]string, 0, len(dates))
    for d := range dates { keys = append(keys, d) }
    sort.Strings(keys)

    out := make([]DailyEfficiency, 0, len(keys))
    for _, d := range keys {
        h := hours[d]
        n := tickets[d]
        eff := 0.0
        if h > 0 { eff = float64(n) / h }
        out = append(out, DailyEfficiency{Date: d, HoursLogged: round2(h), TicketsClosed: n, Efficiency: round2(eff)})
    }
    return out
}
