/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package metrics

import (
    "sort"
    "strings"
    "time"

    "github.com/teamlens/teamlens/internal/domain"
)

type DailyUtilization struct {
    Date        string  `json:"date"`
    Hours       float64 `json:"hours"`
    Utilization float64 `json:"utilization"`
}

type UserWorkload struct {
    Email            string             `json:"email"`
    FullName         string             `json:"fullName"`
    TotalLoggedHours float64            `json:"totalLoggedHours"`
    AvailableHours   float64            `json:"availableHours"`
    LeaveCount       int                `json:"leaveCount"`
    UtilizationRate  float64            `json:"utilizationRate"`
    OvertimeHours    float64            `json:"overtimeHours"`
    IdleHours        float64            `json:"idleHours"`
    ProjectHours     map[string]float64 `json:"projectHours"`
    WorkTypeHours    map[string]float64 `json:"workTypeHours"`
    Daily            []DailyUtilization `json:"daily"`
}

type WorkloadReport struct {
    Users              []UserWorkload `json:"users"`
    AverageUtilization float64        `json:"averageUtilization"`
    TotalOvertime      float64        `json:"totalOvertime"`
    TotalIdleHours     float64        `json:"totalIdleHours"`
    TotalLeaves        int            `json:"totalLeaves"`
    TopContributors    []UserWorkload `json:"topContributors"`
    Underutilized      []UserWorkload `json:"underutilizedMembers"`
}

// matchesWorkType reports whether a dynamic category key feeds the work-type
// distribution. Policy: any key containing "work type" or "type",
// case-insensitive; a record with several matching categories contributes its
// hours to every matched bucket.
func matchesWorkType(category string) bool {
    c := strings.ToLower(category)
    return strings.Contains(c, "work type") || strings.Contains(c, "type")
}

// ComputeWorkload derives per-user utilization for every user in scope plus
// the cross-user roll-up. Pure: same snapshot and filter always yield the
// same report.
func ComputeWorkload(snap domain.Snapshot, f domain.Filter, p Policy) WorkloadReport {
    scope := f.ScopeUsers(snap.Users, snap.Teams)
    projName := map[string]string{}
    for _, pr := range snap.Projects { projName[pr.ID] = pr.Name }
    shifts := shiftMapsByUser(snap.Shifts)

    from, to := dateOf(f.From), dateOf(f.To)

    // Unrounded figures kept alongside the published report for the roll-up
    // and for tie-stable sorting.
    rates := make([]float64, 0, len(scope))
    logged := make([]float64, 0, len(scope))
    avails := make([]Availability, 0, len(scope))

    report := WorkloadReport{Users: make([]UserWorkload, 0, len(scope))}
    var totalOvertime, totalIdle float64

    for _, u := range scope {
        var logs []domain.WorkLog
        for _, l := range snap.WorkLogs {
            if l.UserEmail != u.Email { continue }
            d := dateOf(l.StartedAt)
            if d.Before(from) || d.After(to) { continue }
            if !f.ProjectSelected(l.ProjectID) { continue }
            logs = append(logs, l)
        }

        var secs int64
        for _, l := range logs { secs += l.Seconds }
        loggedH := float64(secs) / 3600

        av := AvailableHours(from, to, shifts[u.Email], p.DailyCapacityHours)
        rate := 0.0
        if av.Hours > 0 { rate = loggedH / av.Hours * 100 }
        overtime := loggedH - av.Hours
        if overtime < 0 { overtime = 0 }
        idle := av.Hours - loggedH
        if idle < 0 { idle = 0 }

        projectHours := map[string]float64{}
        for name, hrs := range SumBy(logs,
            func(l domain.WorkLog) string { return projName[l.ProjectID] },
            func(l domain.WorkLog) float64 { return float64(l.Seconds) / 3600 }) {
            projectHours[name] = round2(hrs)
        }

        workType := map[string]float64{}
        for _, l := range logs {
            hrs := float64(l.Seconds) / 3600
            for cat, val := range l.Categories {
                if !matchesWorkType(cat) || val == "" { continue }
                workType[val] += hrs
            }
        }
        for k, v := range workType { workType[k] = round2(v) }

        var daily []DailyUtilization
        byDay := SumBy(logs,
            func(l domain.WorkLog) string { return dayKey(l.StartedAt) },
            func(l domain.WorkLog) float64 { return float64(l.Seconds) / 3600 })
        userShifts := shifts[u.Email]
        eachDay(from, to, func(d time.Time) {
            key := dayKey(d)
            hrs := byDay[key]
            util := 0.0
            code := userShifts[key]
            if code != domain.ShiftHoliday && code != domain.ShiftLeave && p.DailyCapacityHours > 0 {
                util = hrs / p.DailyCapacityHours * 100
            }
            daily = append(daily, DailyUtilization{Date: key, Hours: round2(hrs), Utilization: round2(util)})
        })

        report.Users = append(report.Users, UserWorkload{
            Email:            u.Email,
            FullName:         u.FullName,
            TotalLoggedHours: round2(loggedH),
            AvailableHours:   round2(av.Hours),
            LeaveCount:       av.Leaves,
            UtilizationRate:  round2(rate),
            OvertimeHours:    round2(overtime),
            IdleHours:        round2(idle),
            ProjectHours:     projectHours,
            WorkTypeHours:    workType,
            Daily:            daily,
        })
        rates = append(rates, rate)
        logged = append(logged, loggedH)
        avails = append(avails, av)
        totalOvertime += overtime
        totalIdle += idle
        report.TotalLeaves += av.Leaves
    }

    if len(rates) > 0 {
        sum := 0.0
        for _, r := range rates { sum += r }
        report.AverageUtilization = round2(sum / float64(len(rates)))
    }
    report.TotalOvertime = round2(totalOvertime)
    report.TotalIdleHours = round2(totalIdle)

    // Top contributors: users with any logged time, highest rate first.
    // Underutilized: users with at least one available day, lowest rate first.
    // Ties keep original user order (stable sort over index slices).
    var topIdx, lowIdx []int
    for i := range report.Users {
        if logged[i] > 0 { topIdx = append(topIdx, i) }
        if avails[i].Hours > 0 { lowIdx = append(lowIdx, i) }
    }
    sort.SliceStable(topIdx, func(a, b int) bool { return rates[topIdx[a]] > rates[topIdx[b]] })
    sort.SliceStable(lowIdx, func(a, b int) bool { return rates[lowIdx[a]] < rates[lowIdx[b]] })
    if len(topIdx) > p.TopN { topIdx = topIdx[:p.TopN] }
    if len(lowIdx) > p.TopN { lowIdx = lowIdx[:p.TopN] }
    for _, i := range topIdx { report.TopContributors = append(report.TopContributors, report.Users[i]) }
    for _, i := range lowIdx { report.Underutilized = append(report.Underutilized, report.Users[i]) }

    return report
}
