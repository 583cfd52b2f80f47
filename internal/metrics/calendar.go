package metrics

import (
    "math"
    "time"

    "github.com/teamlens/teamlens/internal/domain"
)

const dayLayout = "2006-01-02"

func dayKey(t time.Time) string { return t.Format(dayLayout) }

// dateOf strips the clock, keeping only the calendar day.
func dateOf(t time.Time) time.Time {
    return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// eachDay visits every calendar day of the inclusive range. A reversed range
// visits nothing.
func eachDay(start, end time.Time, fn func(d time.Time)) {
    for d := dateOf(start); !d.After(dateOf(end)); d = d.AddDate(0, 0, 1) {
        fn(d)
    }
}

func isWeekend(d time.Time) bool {
    wd := d.Weekday()
    return wd == time.Saturday || wd == time.Sunday
}

// mondayOf returns the Monday of the week containing t.
func mondayOf(t time.Time) time.Time {
    weekday := int(t.Weekday())
    if weekday == 0 { weekday = 7 }
    return dateOf(t).AddDate(0, 0, -(weekday - 1))
}

// WorkingDays counts weekdays in the inclusive range [start, end], independent
// of shift codes. This is the fallback availability basis when no shift data
// exists.
func WorkingDays(start, end time.Time) int {
    n := 0
    eachDay(start, end, func(d time.Time) {
        if !isWeekend(d) { n++ }
    })
    return n
}

type Availability struct {
    Hours  float64
    Leaves int
}

// AvailableHours walks each calendar day of the inclusive range and accumulates
// capacity hours for every day whose shift code is neither H nor L. Days
// without an entry default to G. L days additionally count as leave.
func AvailableHours(start, end time.Time, shifts map[string]string, capacity float64) Availability {
    var out Availability
    eachDay(start, end, func(d time.Time) {
        code, ok := shifts[dayKey(d)]
        if !ok || code == "" { code = domain.ShiftGeneral }
        switch code {
        case domain.ShiftHoliday:
        case domain.ShiftLeave:
            out.Leaves++
        default:
            out.Hours += capacity
        }
    })
    return out
}

// shiftMapsByUser indexes shift entries as user -> day key -> code.
func shiftMapsByUser(entries []domain.ShiftEntry) map[string]map[string]string {
    out := map[string]map[string]string{}
    for _, e := range entries {
        m := out[e.UserEmail]
        if m == nil { m = map[string]string{}; out[e.UserEmail] = m }
        m[dayKey(e.Date)] = e.Code
    }
    return out
}

// round2 is applied to every published hour and percentage figure, and only
// there; intermediate arithmetic stays at full precision.
func round2(v float64) float64 { return math.Round(v*100) / 100 }
