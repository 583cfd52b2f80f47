package repo

import (
    "context"
    "fmt"
    "time"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/rs/zerolog"

    "github.com/teamlens/teamlens/internal/config"
    "github.com/teamlens/teamlens/internal/domain"
)

type DB struct {
    Pool *pgxpool.Pool
    log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
    pool, err := pgxpool.New(ctx, cfg.DBDSN)
    if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
    if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
    return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

// Repository reads the raw collections the metrics core consumes. It never
// writes computed metrics back; results are recomputed on demand.
type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

func emptyOr(vals []string) []string {
    if vals == nil { return []string{} }
    return vals
}

// WorkLogs returns rows whose start time falls inside the filter's inclusive
// date range, optionally restricted to the selected users and projects.
func (r *Repository) WorkLogs(ctx context.Context, f domain.Filter) ([]domain.WorkLog, error) {
    const q = `
        SELECT user_email, project_id, started_at, ended_at, seconds, COALESCE(categories, '{}'::jsonb)
        FROM work_logs
        WHERE started_at >= $1 AND started_at < $2
          AND (cardinality($3::text[]) = 0 OR user_email = ANY($3))
          AND (cardinality($4::text[]) = 0 OR project_id = ANY($4))
        ORDER BY started_at`
    rows, err := r.db.Pool.Query(ctx, q, f.From, f.To.AddDate(0, 0, 1), emptyOr(f.Users), emptyOr(f.Projects))
    if err != nil { return nil, fmt.Errorf("work logs: %w", err) }
    defer rows.Close()
    var out []domain.WorkLog
    for rows.Next() {
        var l domain.WorkLog
        if err := rows.Scan(&l.UserEmail, &l.ProjectID, &l.StartedAt, &l.EndedAt, &l.Seconds, &l.Categories); err != nil {
            return nil, fmt.Errorf("work logs scan: %w", err)
        }
        out = append(out, l)
    }
    return out, rows.Err()
}

// Shifts returns shift entries with shift_date inside the range.
func (r *Repository) Shifts(ctx context.Context, f domain.Filter) ([]domain.ShiftEntry, error) {
    const q = `
        SELECT user_email, shift_date, code
        FROM shift_entries
        WHERE shift_date >= $1 AND shift_date <= $2
          AND (cardinality($3::text[]) = 0 OR user_email = ANY($3))
        ORDER BY user_email, shift_date`
    rows, err := r.db.Pool.Query(ctx, q, f.From, f.To, emptyOr(f.Users))
    if err != nil { return nil, fmt.Errorf("shifts: %w", err) }
    defer rows.Close()
    var out []domain.ShiftEntry
    for rows.Next() {
        var e domain.ShiftEntry
        if err := rows.Scan(&e.UserEmail, &e.Date, &e.Code); err != nil {
            return nil, fmt.Errorf("shifts scan: %w", err)
        }
        out = append(out, e)
    }
    return out, rows.Err()
}

// Users, Projects and Teams are small reference collections, fetched whole.
func (r *Repository) Users(ctx context.Context) ([]domain.User, error) {
    rows, err := r.db.Pool.Query(ctx, `SELECT email, COALESCE(full_name, '') FROM users ORDER BY email`)
    if err != nil { return nil, fmt.Errorf("users: %w", err) }
    defer rows.Close()
    var out []domain.User
    for rows.Next() {
        var u domain.User
        if err := rows.Scan(&u.Email, &u.FullName); err != nil { return nil, fmt.Errorf("users scan: %w", err) }
        out = append(out, u)
    }
    return out, rows.Err()
}

func (r *Repository) Projects(ctx context.Context) ([]domain.Project, error) {
    rows, err := r.db.Pool.Query(ctx, `SELECT id, COALESCE(name, '') FROM projects ORDER BY id`)
    if err != nil { return nil, fmt.Errorf("projects: %w", err) }
    defer rows.Close()
    var out []domain.Project
    for rows.Next() {
        var p domain.Project
        if err := rows.Scan(&p.ID, &p.Name); err != nil { return nil, fmt.Errorf("projects scan: %w", err) }
        out = append(out, p)
    }
    return out, rows.Err()
}

func (r *Repository) Teams(ctx context.Context) ([]domain.Team, error) {
    const q = `
        SELECT t.id, t.name,
               COALESCE(array_agg(m.user_email) FILTER (WHERE m.user_email IS NOT NULL), '{}')
        FROM teams t
        LEFT JOIN team_members m ON m.team_id = t.id
        GROUP BY t.id, t.name
        ORDER BY t.name`
    rows, err := r.db.Pool.Query(ctx, q)
    if err != nil { return nil, fmt.Errorf("teams: %w", err) }
    defer rows.Close()
    var out []domain.Team
    for rows.Next() {
        var t domain.Team
        var id uuid.UUID
        if err := rows.Scan(&id, &t.Name, &t.Members); err != nil { return nil, fmt.Errorf("teams scan: %w", err) }
        t.ID = id
        out = append(out, t)
    }
    return out, rows.Err()
}

// TryAdvisoryLock keeps scheduled digests single-flight across replicas.
func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
    return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
    if !ok && err == nil { return fmt.Errorf("advisory unlock returned false") }
    return err
}
