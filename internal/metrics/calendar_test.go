package metrics

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/teamlens/teamlens/internal/domain"
)

// 2024-01-01 is a Monday; most fixtures hang off that week.
func date(y int, m time.Month, d int) time.Time {
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func wl(email, project string, day time.Time, hours float64) domain.WorkLog {
    return domain.WorkLog{
        UserEmail: email,
        ProjectID: project,
        StartedAt: day.Add(9 * time.Hour),
        EndedAt:   day.Add(9*time.Hour + time.Duration(hours*float64(time.Hour))),
        Seconds:   int64(hours * 3600),
    }
}

func TestWorkingDaysExcludesWeekends(t *testing.T) {
    // Mon..Sun
    assert.Equal(t, 5, WorkingDays(date(2024, 1, 1), date(2024, 1, 7)))
    // single Saturday
    assert.Equal(t, 0, WorkingDays(date(2024, 1, 6), date(2024, 1, 6)))
    // across two weeks
    assert.Equal(t, 10, WorkingDays(date(2024, 1, 1), date(2024, 1, 14)))
}

func TestWorkingDaysReversedRange(t *testing.T) {
    assert.Equal(t, 0, WorkingDays(date(2024, 1, 7), date(2024, 1, 1)))
}

func TestAvailableHoursDefaultsToGeneral(t *testing.T) {
    av := AvailableHours(date(2024, 1, 1), date(2024, 1, 5), nil, 8)
    assert.Equal(t, 40.0, av.Hours)
    assert.Equal(t, 0, av.Leaves)
}

func TestAvailableHoursShiftCodes(t *testing.T) {
    shifts := map[string]string{
        "2024-01-01": domain.ShiftHoliday,
        "2024-01-02": domain.ShiftLeave,
        "2024-01-03": domain.ShiftGeneral,
        // 01-04 missing -> G, 01-05 custom code -> working
        "2024-01-05": "N",
    }
    av := AvailableHours(date(2024, 1, 1), date(2024, 1, 5), shifts, 8)
    assert.Equal(t, 24.0, av.Hours)
    assert.Equal(t, 1, av.Leaves)
}

func TestAvailableHoursReversedRange(t *testing.T) {
    av := AvailableHours(date(2024, 1, 5), date(2024, 1, 1), nil, 8)
    assert.Zero(t, av.Hours)
    assert.Zero(t, av.Leaves)
}

func TestShiftMapsByUser(t *testing.T) {
    entries := []domain.ShiftEntry{
        {UserEmail: "a@x.io", Date: date(2024, 1, 1), Code: domain.ShiftLeave},
        {UserEmail: "a@x.io", Date: date(2024, 1, 2), Code: domain.ShiftGeneral},
        {UserEmail: "b@x.io", Date: date(2024, 1, 1), Code: domain.ShiftHoliday},
    }
    m := shiftMapsByUser(entries)
    require.Len(t, m, 2)
    assert.Equal(t, domain.ShiftLeave, m["a@x.io"]["2024-01-01"])
    assert.Equal(t, domain.ShiftHoliday, m["b@x.io"]["2024-01-01"])
}

func TestMondayOf(t *testing.T) {
    // Thursday -> same week's Monday
    assert.Equal(t, date(2024, 1, 1), mondayOf(date(2024, 1, 4)))
    // Sunday belongs to the week started the previous Monday
    assert.Equal(t, date(2024, 1, 1), mondayOf(date(2024, 1, 7)))
    // Monday maps to itself
    assert.Equal(t, date(2024, 1, 8), mondayOf(date(2024, 1, 8)))
}
