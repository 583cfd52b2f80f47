/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/google/uuid"
    "github.com/rs/zerolog"

    "github.com/teamlens/teamlens/internal/config"
    "github.com/teamlens/teamlens/internal/domain"
    "github.com/teamlens/teamlens/internal/metrics"
)

type service interface {
    Dashboard(ctx context.Context, f domain.Filter) (metrics.Dashboard, error)
    RunWeeklyDigest(ctx context.Context) error
}

type Handlers struct {
    cfg config.Config
    log zerolog.Logger
    svc service
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc service) *Handlers {
    return &Handlers{cfg: cfg, log: log, svc: svc}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) RunNow(c *gin.Context) {
    // Run in background detached from the HTTP request to avoid context cancellation
    go func(){ _ = h.svc.RunWeeklyDigest(context.Background()) }()
    c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func splitCSV(s string) []string {
    if strings.TrimSpace(s) == "" { return nil }
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        if v := strings.TrimSpace(p); v != "" { out = append(out, v) }
    }
    return out
}

// parseFilter reads from/to (required, inclusive ISO dates) and the optional
// users/projects/teams CSV selections.
func parseFilter(c *gin.Context) (domain.Filter, bool) {
    var f domain.Filter
    from, err1 := time.Parse("2006-01-02", c.Query("from"))
    to, err2 := time.Parse("2006-01-02", c.Query("to"))
    if err1 != nil || err2 != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be YYYY-MM-DD"})
        return f, false
    }
    f.From, f.To = from, to
    f.Users = splitCSV(c.Query("users"))
    f.Projects = splitCSV(c.Query("projects"))
    for _, raw := range splitCSV(c.Query("teams")) {
        id, err := uuid.Parse(raw)
        if err != nil {
            c.JSON(http.StatusBadRequest, gin.H{"error": "teams must be a CSV of UUIDs"})
            return f, false
        }
        f.Teams = append(f.Teams, id)
    }
    return f, true
}

func (h *Handlers) dashboard(c *gin.Context) (metrics.Dashboard, domain.Filter, bool) {
    f, ok := parseFilter(c)
    if !ok { return metrics.Dashboard{}, f, false }
    d, err := h.svc.Dashboard(c.Request.Context(), f)
    if err != nil {
        h.log.Error().Err(err).Msg("dashboard compute failed")
        c.JSON(http.StatusBadGateway, gin.H{"error": "upstream fetch failed"})
        return metrics.Dashboard{}, f, false
    }
    return d, f, true
}

func (h *Handlers) Workload(c *gin.Context) {
    d, _, ok := h.dashboard(c)
    if !ok { return }
    c.JSON(http.StatusOK, d.Workload)
}

func (h *Handlers) Projects(c *gin.Context) {
    d, _, ok := h.dashboard(c)
    if !ok { return }
    c.JSON(http.StatusOK, d.Projects)
}

func (h *Handlers) Efficiency(c *gin.Context) {
    d, _, ok := h.dashboard(c)
    if !ok { return }
    c.JSON(http.StatusOK, d.Efficiency)
}

func (h *Handlers) Trends(c *gin.Context) {
    g := metrics.Granularity(c.DefaultQuery("granularity", string(metrics.GranularityDaily)))
    switch g {
    case metrics.GranularityDaily, metrics.GranularityWeekly, metrics.GranularityMonthly:
    default:
        c.JSON(http.StatusBadRequest, gin.H{"error": "granularity must be daily, weekly or monthly"})
        return
    }
    d, f, ok := h.dashboard(c)
    if !ok { return }
    rows := metrics.TimeBuckets(d.Workload.Users, f.From, f.To, g)
    c.JSON(http.StatusOK, gin.H{"granularity": g, "buckets": rows})
}
