/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/teamlens/teamlens/internal/adapters/openai"
    "github.com/teamlens/teamlens/internal/adapters/telegram"
    "github.com/teamlens/teamlens/internal/adapters/tracker"
    "github.com/teamlens/teamlens/internal/config"
    httpx "github.com/teamlens/teamlens/internal/http"
    "github.com/teamlens/teamlens/internal/jobs"
    "github.com/teamlens/teamlens/internal/logger"
    "github.com/teamlens/teamlens/internal/repo"
    "github.com/teamlens/teamlens/internal/services"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // DB
    db := repo.MustOpen(ctx, cfg, log)
    defer db.Close()
    repository := repo.NewRepository(db, log)

    // Adapters
    tc := tracker.NewClient(cfg, log)
    llm := openai.NewClient(cfg, log)
    tg := telegram.NewClient(cfg, log)

    svc := services.New(cfg, log, repository, tc, llm, tg)

    router := httpx.NewRouter(cfg, log, svc)

    cron := jobs.NewCron(cfg, log, svc, repository)
    cron.Start()
    defer cron.Stop()

    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}
