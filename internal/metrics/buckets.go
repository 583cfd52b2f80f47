package metrics

import "time"

type Granularity string

const (
    GranularityDaily   Granularity = "daily"
    GranularityWeekly  Granularity = "weekly"
    GranularityMonthly Granularity = "monthly"
)

// BucketRow is one period with every in-scope user's accumulated hours.
type BucketRow struct {
    Period string             `json:"period"`
    Hours  map[string]float64 `json:"hours"`
}

func periodLabel(d time.Time, g Granularity) string {
    switch g {
    case GranularityWeekly:
        return dayKey(mondayOf(d))
    case GranularityMonthly:
        return d.Format("2006-01")
    default:
        return dayKey(d)
    }
}

// TimeBuckets re-expresses per-user daily hour series at the requested
// granularity. Weeks are Monday-aligned; months are calendar months. Only
// users with nonzero total logged hours appear as series; every covered
// period gets a row, zero-filled for absent users.
func TimeBuckets(users []UserWorkload, from, to time.Time, g Granularity) []BucketRow {
    var series []UserWorkload
    for _, u := range users {
        if u.TotalLoggedHours > 0 { series = append(series, u) }
    }

    var order []string
    index := map[string]int{}
    eachDay(from, to, func(d time.Time) {
        label := periodLabel(d, g)
        if _, ok := index[label]; !ok {
            index[label] = len(order)
            order = append(order, label)
        }
    })

    rows := make([]BucketRow, len(order))
    for i, label := range order {
        hours := make(map[string]float64, len(series))
        for _, u := range series { hours[u.Email] = 0 }
        rows[i] = BucketRow{Period: label, Hours: hours}
    }

    for _, u := range series {
        acc := make([]float64, len(order))
        for _, day := range u.Daily {
            d, err := time.Parse(dayLayout, day.Date)
            if err != nil { continue }
            if i, ok := index[periodLabel(d, g)]; ok { acc[i] += day.Hours }
        }
        for i := range order { rows[i].Hours[u.Email] = round2(acc[i]) }
    }
    return rows
}
