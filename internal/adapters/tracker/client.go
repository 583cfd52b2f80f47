/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package tracker

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"
    "time"

    "github.com/rs/zerolog"

    "github.com/teamlens/teamlens/internal/config"
    "github.com/teamlens/teamlens/internal/domain"
)

const pageSize = 100

// Client talks to the issue tracker's search API. The query language itself
// is the tracker's; we only build date/project-scoped queries here.
type Client struct {
    baseURL    string
    token      string
    user       string
    pass       string
    maxResults int
    http       *http.Client
    log        zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        baseURL:    cfg.TrackerBaseURL,
        token:      cfg.TrackerToken,
        user:       cfg.TrackerUsername,
        pass:       cfg.TrackerPassword,
        maxResults: cfg.TrackerMaxResults,
        http:       &http.Client{Timeout: cfg.HTTPTimeout},
        log:        log,
    }
}

// buildQuery scopes the search to the filter's range and project selection,
// newest updates first.
func buildQuery(f domain.Filter) string {
    var b strings.Builder
    if len(f.Projects) > 0 {
        fmt.Fprintf(&b, "project in (%s) AND ", strings.Join(f.Projects, ","))
    }
    fmt.Fprintf(&b, "updated >= %q AND updated <= %q ORDER BY updated DESC",
        f.From.Format("2006-01-02"), f.To.Format("2006-01-02"))
    return b.String()
}

// SearchIssues pages through search results up to the configured cap
// (tracker-side hard limit of 1000) and maps payloads defensively.
func (c *Client) SearchIssues(ctx context.Context, f domain.Filter) ([]domain.Issue, error) {
    if c.baseURL == "" { return nil, errors.New("tracker: empty baseURL") }
    query := buildQuery(f)
    limit := c.maxResults
    if limit <= 0 || limit > 1000 { limit = 1000 }

    var out []domain.Issue
    startAt := 0
    for {
        page, err := c.search(ctx, query, startAt, pageSize)
        if err != nil { return nil, err }
        arr, _ := page["issues"].([]any)
        if len(arr) == 0 { break }
        for _, it := range arr {
            im, _ := it.(map[string]any)
            if im == nil { continue }
            if is, ok := mapIssue(im); ok { out = append(out, is) }
        }
        if len(out) >= limit {
            out = out[:limit]
            break
        }
        if len(arr) < pageSize { break }
        startAt += pageSize
    }
    return out, nil
}

func (c *Client) search(ctx context.Context, query string, startAt, max int) (map[string]any, error) {
    q := url.Values{}
    q.Set("jql", query)
    if startAt > 0 { q.Set("startAt", fmt.Sprint(startAt)) }
    q.Set("maxResults", fmt.Sprint(max))
    q.Set("fields", "project,status,assignee,priority,created,updated")
    u := strings.TrimRight(c.baseURL, "/") + "/rest/api/2/search?" + q.Encode()

    var lastErr error
    for attempt := 0; attempt < 3; attempt++ {
        req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
        if err != nil { return nil, err }
        if c.token != "" {
            req.Header.Set("Authorization", "Bearer "+c.token)
        } else if c.user != "" && c.pass != "" {
            req.SetBasicAuth(c.user, c.pass)
        }
        resp, err := c.http.Do(req)
        if err != nil { lastErr = err } else {
            defer resp.Body.Close()
            if resp.StatusCode >= 300 {
                b, _ := io.ReadAll(resp.Body)
                // retry on 429/5xx only
                if resp.StatusCode == 429 || resp.StatusCode >= 500 {
                    lastErr = fmt.Errorf("tracker api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
                } else {
                    return nil, fmt.Errorf("tracker api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
                }
            } else {
                var out map[string]any
                if err := json.NewDecoder(resp.Body).Decode(&out); err != nil { return nil, err }
                return out, nil
            }
        }
        time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
    }
    return nil, lastErr
}

// mapIssue lifts one search payload into a domain.Issue. Rows without
// parseable timestamps are dropped at fetch; the core assumes well-formed
// dates.
func mapIssue(im map[string]any) (domain.Issue, bool) {
    fields, _ := im["fields"].(map[string]any)
    if fields == nil { return domain.Issue{}, false }
    var is domain.Issue
    if pj, ok := fields["project"].(map[string]any); ok {
        is.ProjectKey = toStrAny(pj["key"])
        is.ProjectName = toStrAny(pj["name"])
    }
    if st, ok := fields["status"].(map[string]any); ok { is.Status = toStrAny(st["name"]) }
    if as, ok := fields["assignee"].(map[string]any); ok { is.Assignee = toStrAny(as["emailAddress"]) }
    if pr, ok := fields["priority"].(map[string]any); ok { is.Priority = toStrAny(pr["name"]) }
    created := parseTimeUTC(fields["created"])
    updated := parseTimeUTC(fields["updated"])
    if created == nil || updated == nil { return domain.Issue{}, false }
    is.CreatedAt = *created
    is.UpdatedAt = *updated
    return is, true
}

func parseTimeUTC(v any) *time.Time {
    s, _ := v.(string)
    if s == "" { return nil }
    layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000-0700", "2006-01-02T15:04:05-0700", "2006-01-02"}
    for _, l := range layouts {
        if t, err := time.Parse(l, s); err == nil {
            tt := t.UTC()
            return &tt
        }
    }
    return nil
}

func toStrAny(v any) string {
    if v == nil { return "" }
    if s, ok := v.(string); ok { return s }
    return fmt.Sprintf("%v", v)
}
