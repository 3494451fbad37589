package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/IshaanNene/postwatch/internal/listing"
	"github.com/IshaanNene/postwatch/internal/types"
)

var (
	fetchDate    string
	fetchJSON    bool
	fetchNotify  bool
	fetchArchive bool
	fetchHTTP    bool
)

// fetchCmd creates the "fetch" subcommand.
func fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch one date's listing and print it",
		Args:  cobra.NoArgs,
		RunE:  runFetch,
	}

	cmd.Flags().StringVarP(&fetchDate, "date", "d", "", "date YYYY-MM-DD (default: two working days ago)")
	cmd.Flags().BoolVar(&fetchJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVar(&fetchNotify, "notify", false, "send the configured notification")
	cmd.Flags().BoolVar(&fetchArchive, "archive", false, "write to the configured archive")
	cmd.Flags().BoolVar(&fetchHTTP, "http", false, "use the plain HTTP fetcher instead of a browser")

	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if fetchHTTP {
		cfg.Fetcher.Type = "http"
	}
	logger := setupLogger(&cfg.Logging)

	date := fetchDate
	if date == "" {
		date = listing.DefaultDate(time.Now())
	}

	a, err := buildApp(cfg, logger, wireOptions{notify: fetchNotify, archive: fetchArchive})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	entries, err := a.service.GetListing(ctx, date)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if fetchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	renderTable(out, entries)
	stats := a.metrics.Snapshot()
	fmt.Fprintf(out, "\n%s: %d entries from %d pages in %s\n",
		date, len(entries), stats["pages_fetched"], time.Since(start).Round(time.Millisecond))
	return nil
}

func renderTable(w io.Writer, entries []types.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no entries")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Dato", "Tittel", "Ansvarlig enhet", "Arkivlenke"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Date, e.DisplayTitle(), e.Unit, e.Archive()})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
