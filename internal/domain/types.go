package domain

import (
    "strings"
    "time"

    "github.com/google/uuid"
)

// WorkLog is one immutable time-tracking row. Every published hour figure is
// derived from Seconds/3600; rounding happens only at publication, never on
// intermediate sums.
type WorkLog struct {
    UserEmail  string
    ProjectID  string
    StartedAt  time.Time
    EndedAt    time.Time
    Seconds    int64
    Categories map[string]string // dynamic category name -> selected value
}

// Shift codes classify one calendar day for one user. Any code other than
// H or L (including a missing entry, defaulted to G) is a standard working day.
const (
    ShiftGeneral = "G"
    ShiftHoliday = "H"
    ShiftLeave   = "L"
)

type ShiftEntry struct {
    UserEmail string
    Date      time.Time // calendar day
    Code      string
}

type Issue struct {
    ProjectKey  string
    ProjectName string
    Status      string
    Assignee    string // email, empty when unassigned
    Priority    string // empty when the tracker has none
    CreatedAt   time.Time
    UpdatedAt   time.Time
}

// Fallbacks for optional tracker fields.
const (
    NoPriority = "No Priority"
    Unassigned = "Unassigned"
)

type StatusClass int

const (
    StatusUnknown StatusClass = iota
    StatusOpen
    StatusInProgress
    StatusClosed
)

// ClassifyStatus buckets a tracker status by case-insensitive substring match
// against a fixed vocabulary. Statuses matching nothing stay unknown.
func ClassifyStatus(name string) StatusClass {
    s := strings.ToLower(name)
    switch {
    case strings.Contains(s, "open") || strings.Contains(s, "to do"):
        return StatusOpen
    case strings.Contains(s, "progress") || strings.Contains(s, "development"):
        return StatusInProgress
    case strings.Contains(s, "closed") || strings.Contains(s, "done") || strings.Contains(s, "resolved"):
        return StatusClosed
    default:
        return StatusUnknown
    }
}

type User struct {
    Email    string
    FullName string
}

type Project struct {
    ID   string
    Name string
}

type Team struct {
    ID      uuid.UUID
    Name    string
    Members []string // member emails
}

// Filter is the resolved selection a dashboard request runs under.
// From/To are inclusive calendar dates; empty selection lists mean unrestricted.
type Filter struct {
    From     time.Time
    To       time.Time
    Users    []string
    Projects []string
    Teams    []uuid.UUID
}

func (f Filter) ProjectSelected(id string) bool {
    if len(f.Projects) == 0 { return true }
    for _, p := range f.Projects { if p == id { return true } }
    return false
}

// ScopeUsers resolves the user selection against team membership: explicit
// users win, then selected teams expand to their members, else everyone.
func (f Filter) ScopeUsers(users []User, teams []Team) []User {
    if len(f.Users) > 0 {
        set := map[string]struct{}{}
        for _, u := range f.Users { set[u] = struct{}{} }
        out := make([]User, 0, len(f.Users))
        for _, u := range users { if _, ok := set[u.Email]; ok { out = append(out, u) } }
        return out
    }
    if len(f.Teams) > 0 {
        member := map[string]struct{}{}
        for _, t := range teams {
            for _, id := range f.Teams {
                if t.ID == id {
                    for _, m := range t.Members { member[m] = struct{}{} }
                }
            }
        }
        out := make([]User, 0, len(member))
        for _, u := range users { if _, ok := member[u.Email]; ok { out = append(out, u) } }
        return out
    }
    return users
}

// Snapshot is the immutable set of raw collections one aggregation run
// consumes. Fetching is the caller's concern; the metrics core never does I/O.
type Snapshot struct {
    WorkLogs []WorkLog
    Shifts   []ShiftEntry
    Issues   []Issue
    Users    []User
    Projects []Project
    Teams    []Team
}
