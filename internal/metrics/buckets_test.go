package metrics

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/teamlens/teamlens/internal/domain"
)

func bucketFixture(t *testing.T) WorkloadReport {
    t.Helper()
    var logs []domain.WorkLog
    // two ISO weeks, uneven hours
    logs = append(logs,
        wl("a@x.io", "P1", date(2024, 1, 1), 7.5),
        wl("a@x.io", "P1", date(2024, 1, 3), 6.25),
        wl("a@x.io", "P1", date(2024, 1, 9), 4),
        wl("a@x.io", "P1", date(2024, 1, 12), 8),
        wl("b@x.io", "P1", date(2024, 1, 10), 5.5),
    )
    snap := domain.Snapshot{
        WorkLogs: logs,
        Users: []domain.User{
            {Email: "a@x.io"}, {Email: "b@x.io"}, {Email: "idle@x.io"},
        },
    }
    f := domain.Filter{From: date(2024, 1, 1), To: date(2024, 1, 14)}
    return ComputeWorkload(snap, f, DefaultPolicy())
}

func TestTimeBucketsDaily(t *testing.T) {
    r := bucketFixture(t)
    rows := TimeBuckets(r.Users, date(2024, 1, 1), date(2024, 1, 14), GranularityDaily)
    require.Len(t, rows, 14)
    assert.Equal(t, "2024-01-01", rows[0].Period)
    assert.Equal(t, 7.5, rows[0].Hours["a@x.io"])
    assert.Equal(t, 0.0, rows[0].Hours["b@x.io"])
}

func TestTimeBucketsWeeklyMondayAligned(t *testing.T) {
    r := bucketFixture(t)
    rows := TimeBuckets(r.Users, date(2024, 1, 1), date(2024, 1, 14), GranularityWeekly)
    require.Len(t, rows, 2)
    assert.Equal(t, "2024-01-01", rows[0].Period)
    assert.Equal(t, "2024-01-08", rows[1].Period)
    assert.Equal(t, 13.75, rows[0].Hours["a@x.io"])
    assert.Equal(t, 12.0, rows[1].Hours["a@x.io"])
    assert.Equal(t, 5.5, rows[1].Hours["b@x.io"])
}

func TestTimeBucketsMonthly(t *testing.T) {
    r := bucketFixture(t)
    // extend the window across a month boundary
    rows := TimeBuckets(r.Users, date(2024, 1, 29), date(2024, 2, 4), GranularityMonthly)
    require.Len(t, rows, 2)
    assert.Equal(t, "2024-01", rows[0].Period)
    assert.Equal(t, "2024-02", rows[1].Period)
}

func TestTimeBucketsExcludesZeroHourUsers(t *testing.T) {
    r := bucketFixture(t)
    rows := TimeBuckets(r.Users, date(2024, 1, 1), date(2024, 1, 14), GranularityWeekly)
    for _, row := range rows {
        _, ok := row.Hours["idle@x.io"]
        assert.False(t, ok, "zero-hour user must not appear as a series")
    }
}

func TestTimeBucketsConserveTotalHours(t *testing.T) {
    r := bucketFixture(t)
    from, to := date(2024, 1, 1), date(2024, 1, 14)
    daily := TimeBuckets(r.Users, from, to, GranularityDaily)
    weekly := TimeBuckets(r.Users, from, to, GranularityWeekly)

    sum := func(rows []BucketRow, user string) float64 {
        var s float64
        for _, row := range rows { s += row.Hours[user] }
        return s
    }
    for _, user := range []string{"a@x.io", "b@x.io"} {
        assert.InDelta(t, sum(daily, user), sum(weekly, user), 1e-9,
            "regrouping must conserve %s's total hours", user)
    }
}
