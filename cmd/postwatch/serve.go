package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/postwatch/internal/api"
	"github.com/IshaanNene/postwatch/internal/listing"
	"github.com/IshaanNene/postwatch/internal/schedule"
)

var (
	servePort     int
	noSchedule    bool
	scheduleAtArg string
)

// serveCmd creates the "serve" subcommand.
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and daily schedule",
		Long:  "Serve GET /api/postlist?date=YYYY-MM-DD and fetch the default date once a day.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (default from config)")
	cmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "disable the daily fetch")
	cmd.Flags().StringVar(&scheduleAtArg, "at", "", "daily fetch time HH:MM (default from config)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if noSchedule {
		cfg.Schedule.Enabled = false
	}
	if scheduleAtArg != "" {
		cfg.Schedule.At = scheduleAtArg
	}
	logger := setupLogger(&cfg.Logging)

	a, err := buildApp(cfg, logger, wireOptions{notify: true, archive: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("archive close error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var daily *schedule.Daily
	if cfg.Schedule.Enabled {
		daily, err = schedule.NewDaily(cfg.Schedule.At, func(ctx context.Context, now time.Time) {
			date := listing.DefaultDate(now)
			if _, err := a.service.GetListing(ctx, date); err != nil {
				logger.Error("scheduled fetch failed", "date", date, "error", err)
			}
		}, logger)
		if err != nil {
			return fmt.Errorf("create schedule: %w", err)
		}
		go daily.Run(ctx)
	}

	serverOpts := []api.Option{
		api.WithStatus(func() map[string]any {
			status := map[string]any{
				"last_notified": a.service.Gate().Last(),
				"default_date":  listing.DefaultDate(time.Now()),
			}
			if daily != nil {
				status["last_scheduled_run"] = daily.LastRun()
				status["next_scheduled_run"] = daily.Next(time.Now()).Format(time.RFC3339)
			}
			return status
		}),
	}
	if cfg.Metrics.Enabled {
		serverOpts = append(serverOpts, api.WithMetrics(a.metrics, cfg.Metrics.Path))
	}

	srv := api.NewServer(cfg.Server.Port, a.service, logger, serverOpts...)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	<-ctx.Done()
	logger.Info("received signal, shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}
	return nil
}
