package main

import (
	"fmt"
	"log/slog"

	"github.com/IshaanNene/postwatch/internal/config"
	"github.com/IshaanNene/postwatch/internal/engine"
	"github.com/IshaanNene/postwatch/internal/fetcher"
	"github.com/IshaanNene/postwatch/internal/listing"
	"github.com/IshaanNene/postwatch/internal/notify"
	"github.com/IshaanNene/postwatch/internal/observability"
	"github.com/IshaanNene/postwatch/internal/parser"
	"github.com/IshaanNene/postwatch/internal/storage"
)

// app holds the wired components shared by serve and fetch.
type app struct {
	service *listing.Service
	archive storage.Archive
	metrics *observability.Metrics
}

func (a *app) Close() error {
	if a.archive != nil {
		return a.archive.Close()
	}
	return nil
}

type wireOptions struct {
	notify  bool
	archive bool
}

func buildApp(cfg *config.Config, logger *slog.Logger, opts wireOptions) (*app, error) {
	metrics := observability.NewMetrics(logger)

	extractor, err := parser.NewPostlistExtractor(&cfg.Site, logger)
	if err != nil {
		return nil, fmt.Errorf("create extractor: %w", err)
	}

	walker := engine.NewWalker(
		fetcher.NewOpener(&cfg.Fetcher, logger),
		extractor,
		logger,
		engine.WithMaxPages(cfg.Walker.MaxPages),
		engine.WithPageDelay(cfg.Walker.PageDelay),
		engine.WithMetrics(metrics),
	)

	svcOpts := []listing.Option{listing.WithMetrics(metrics)}

	if opts.notify {
		n, err := notify.New(&cfg.Notify, logger)
		if err != nil {
			return nil, fmt.Errorf("create notifier: %w", err)
		}
		if n != nil {
			svcOpts = append(svcOpts, listing.WithNotifier(n))
		}
	}

	a := &app{metrics: metrics}
	if opts.archive {
		archive, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("create archive: %w", err)
		}
		if archive != nil {
			a.archive = archive
			svcOpts = append(svcOpts, listing.WithArchive(archive))
		}
	}

	a.service = listing.NewService(cfg.Site.SearchURL, walker, logger, svcOpts...)
	return a, nil
}
