/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "fmt"
    "strings"
    "sync"
    "time"

    "github.com/rs/zerolog"
    "github.com/samber/lo"

    "github.com/teamlens/teamlens/internal/config"
    "github.com/teamlens/teamlens/internal/domain"
    "github.com/teamlens/teamlens/internal/metrics"
    "github.com/teamlens/teamlens/internal/repo"
)

type TrackerClient interface {
    SearchIssues(ctx context.Context, f domain.Filter) ([]domain.Issue, error)
}

type LLM interface {
    Summarize(ctx context.Context, kpis map[string]float64) (string, error)
}

type Notifier interface {
    SendMessagePlain(ctx context.Context, chatID int64, text string) error
    SendMarkdownV2(ctx context.Context, chatID int64, text string) error
}

type Service struct {
    cfg     config.Config
    log     zerolog.Logger
    repo    *repo.Repository
    tracker TrackerClient
    llm     LLM
    tg      Notifier
}

func New(cfg config.Config, log zerolog.Logger, r *repo.Repository, tracker TrackerClient, llm LLM, tg Notifier) *Service {
    return &Service{cfg: cfg, log: log, repo: r, tracker: tracker, llm: llm, tg: tg}
}

// Policy derives the computation policy from configuration overrides.
func (s *Service) Policy() metrics.Policy {
    p := metrics.DefaultPolicy()
    if s.cfg.DailyCapacityHours > 0 { p.DailyCapacityHours = s.cfg.DailyCapacityHours }
    if s.cfg.ForecastDays > 0 { p.ForecastDays = s.cfg.ForecastDays }
    if s.cfg.TrailingWindowDays > 0 { p.TrailingWindowDays = s.cfg.TrailingWindowDays }
    return p
}

// FetchSnapshot loads every collection the aggregators need for the filter
// window. The org tables come from Postgres and issues from the tracker;
// independent fetches run concurrently and the first error wins.
func (s *Service) FetchSnapshot(ctx context.Context, f domain.Filter) (domain.Snapshot, error) {
    var snap domain.Snapshot

    // Duplicate selections change nothing downstream but bloat queries.
    f.Users = lo.Uniq(f.Users)
    f.Projects = lo.Uniq(f.Projects)
    f.Teams = lo.Uniq(f.Teams)

    var mu sync.Mutex
    var firstErr error
    fail := func(stage string, err error) {
        mu.Lock()
        defer mu.Unlock()
        if firstErr == nil { firstErr = fmt.Errorf("fetch %s: %w", stage, err) }
    }

    var wg sync.WaitGroup
    wg.Add(6)
    go func() {
        defer wg.Done()
        projects, err := s.repo.Projects(ctx)
        if err != nil { fail("projects", err); return }
        mu.Lock(); snap.Projects = projects; mu.Unlock()
    }()
    go func() {
        defer wg.Done()
        logs, err := s.repo.WorkLogs(ctx, f)
        if err != nil { fail("worklogs", err); return }
        mu.Lock(); snap.WorkLogs = logs; mu.Unlock()
    }()
    go func() {
        defer wg.Done()
        shifts, err := s.repo.Shifts(ctx, f)
        if err != nil { fail("shifts", err); return }
        mu.Lock(); snap.Shifts = shifts; mu.Unlock()
    }()
    go func() {
        defer wg.Done()
        users, err := s.repo.Users(ctx)
        if err != nil { fail("users", err); return }
        mu.Lock(); snap.Users = users; mu.Unlock()
    }()
    go func() {
        defer wg.Done()
        teams, err := s.repo.Teams(ctx)
        if err != nil { fail("teams", err); return }
        mu.Lock(); snap.Teams = teams; mu.Unlock()
    }()
    go func() {
        defer wg.Done()
        if s.tracker == nil { return }
        issues, err := s.tracker.SearchIssues(ctx, f)
        if err != nil {
            // Tracker outages degrade efficiency scoring but should not
            // sink the whole dashboard.
            s.log.Error().Err(err).Msg("issue search failed; continuing without issues")
            return
        }
        mu.Lock(); snap.Issues = issues; mu.Unlock()
    }()
    wg.Wait()

    if firstErr != nil { return domain.Snapshot{}, firstErr }
    return snap, nil
}

// Dashboard fetches a snapshot and runs the full computation for the filter.
func (s *Service) Dashboard(ctx context.Context, f domain.Filter) (metrics.Dashboard, error) {
    snap, err := s.FetchSnapshot(ctx, f)
    if err != nil { return metrics.Dashboard{}, err }
    return metrics.Compute(snap, f, s.Policy()), nil
}

// RunWeeklyDigest computes the trailing week and delivers a digest to the
// configured Telegram chats, optionally with an LLM narrative on top.
func (s *Service) RunWeeklyDigest(ctx context.Context) error {
    s.log.Info().Msg("WeeklyDigest: start")
    now := time.Now()
    to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
    from := to.AddDate(0, 0, -7)
    f := domain.Filter{From: from, To: to}

    dash, err := s.Dashboard(ctx, f)
    if err != nil { s.log.Error().Err(err).Msg("WeeklyDigest: dashboard failed"); return err }

    kpis := digestKPIs(dash)
    var narrative string
    if s.llm != nil && strings.TrimSpace(s.cfg.OpenAIKey) != "" {
        if sum, err := s.llm.Summarize(ctx, kpis); err == nil {
            narrative = sum
        } else {
            s.log.Error().Err(err).Msg("WeeklyDigest: summarize failed")
        }
    }

    digest := renderDigest(dash, narrative, from, to)
    for _, chat := range s.cfg.TelegramChatIDs {
        for _, part := range chunkText(digest, 3800) {
            if err := s.tg.SendMarkdownV2(ctx, chat, part); err != nil {
                s.log.Error().Err(err).Int64("chat", chat).Msg("telegram send failed")
                _ = s.tg.SendMessagePlain(ctx, chat, part)
            }
        }
    }
    s.log.Info().Time("from", from).Time("to", to).Msg("WeeklyDigest: done")
    return nil
}

func digestKPIs(d metrics.Dashboard) map[string]float64 {
    return map[string]float64{
        "average_utilization": d.Workload.AverageUtilization,
        "total_logged_hours":  d.Efficiency.TotalHours,
        "total_overtime":      d.Workload.TotalOvertime,
        "total_idle":          d.Workload.TotalIdleHours,
        "closed_tickets":      float64(d.Efficiency.ClosedTickets),
        "productivity_index":  d.Efficiency.ProductivityIndex,
        "workload_balance":    d.Efficiency.WorkloadBalanceIndex,
        "overall_efficiency":  d.Efficiency.OverallEfficiency,
    }
}

// escapeMarkdownV2 escapes the characters Telegram's MarkdownV2 mode reserves.
func escapeMarkdownV2(in string) string {
    repl := []string{"_","\\_","*","\\*","[","\\[","]","\\]","(","\\(",")","\\)","~","\\~","`","\\`",">","\\>","#","\\#","+","\\+","-","\\-","=","\\=","|","\\|","{","\\{","}","\\}",".","\\.","!","\\!"}
    for i := 0; i < len(repl); i += 2 { in = strings.ReplaceAll(in, repl[i], repl[i+1]) }
    return in
}

// renderDigest builds a MarkdownV2 digest over the computed dashboard.
func renderDigest(d metrics.Dashboard, narrative string, from, to time.Time) string {
    b := &strings.Builder{}
    fmt.Fprintf(b, "*TeamLens*\n")
    fmt.Fprintf(b, "Weekly digest %s\n\n", escapeMarkdownV2(fmt.Sprintf("%s .. %s", from.Format("2006-01-02"), to.Format("2006-01-02"))))
    fmt.Fprintf(b, "*Avg utilization:* %s%%\n", escapeMarkdownV2(fmt.Sprintf("%.1f", d.Workload.AverageUtilization)))
    fmt.Fprintf(b, "*Logged:* %sh\n", escapeMarkdownV2(fmt.Sprintf("%.1f", d.Efficiency.TotalHours)))
    fmt.Fprintf(b, "*Overtime:* %sh\n", escapeMarkdownV2(fmt.Sprintf("%.1f", d.Workload.TotalOvertime)))
    fmt.Fprintf(b, "*Idle:* %sh\n", escapeMarkdownV2(fmt.Sprintf("%.1f", d.Workload.TotalIdleHours)))
    fmt.Fprintf(b, "*Overall efficiency:* %s\n\n", escapeMarkdownV2(fmt.Sprintf("%.1f", d.Efficiency.OverallEfficiency)))
    if len(d.Workload.TopContributors) > 0 {
        fmt.Fprintf(b, "*Top contributors:*\n")
        for i, u := range d.Workload.TopContributors {
            fmt.Fprintf(b, "%d\\. %s %s%%\n", i+1, escapeMarkdownV2(u.Email), escapeMarkdownV2(fmt.Sprintf("%.1f", u.UtilizationRate)))
        }
        fmt.Fprintf(b, "\n")
    }
    if len(d.Projects.Projects) > 0 {
        fmt.Fprintf(b, "*Projects:*\n")
        limit := d.Projects.Projects
        if len(limit) > 8 { limit = limit[:8] }
        for _, p := range limit {
            fmt.Fprintf(b, "\\- %s %sh \\(%s\\)\n", escapeMarkdownV2(p.ProjectName), escapeMarkdownV2(fmt.Sprintf("%.1f", p.TotalHours)), escapeMarkdownV2(p.Health))
        }
        fmt.Fprintf(b, "\n")
    }
    if narrative != "" {
        fmt.Fprintf(b, "*Summary:*\n%s\n", escapeMarkdownV2(narrative))
    }
    return b.String()
}

// chunkText splits text into chunks of up to max runes, attempting to break on line boundaries.
func chunkText(s string, max int) []string {
    if max <= 0 { return []string{s} }
    var chunks []string
    lines := strings.Split(s, "\n")
    cur := ""
    curlen := 0
    for _, ln := range lines {
        rl := len([]rune(ln))
        if rl > max {
            if curlen > 0 { chunks = append(chunks, cur); cur = ""; curlen = 0 }
            r := []rune(ln)
            for i := 0; i < rl; i += max {
                j := i + max
                if j > rl { j = rl }
                chunks = append(chunks, string(r[i:j]))
            }
            continue
        }
        extra := rl
        if curlen > 0 { extra += 1 }
        if curlen+extra > max {
            chunks = append(chunks, cur)
            cur = ln
            curlen = rl
        } else {
            if curlen == 0 { cur = ln; curlen = rl } else { cur += "\n" + ln; curlen += extra }
        }
    }
    if curlen > 0 { chunks = append(chunks, cur) }
    if len(chunks) == 0 { chunks = []string{""} }
    return chunks
}
