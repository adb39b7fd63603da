package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbanalyser/internal/analyser"
	"github.com/koustreak/dbanalyser/internal/server"
)

func newAnalyseCmd(opts *globalOptions) *cobra.Command {
	var (
		save     bool
		progress bool
	)
	cmd := &cobra.Command{
		Use:     "analyse",
		Aliases: []string{"analyze"},
		Short:   "Run a full schema analysis and print it as JSON",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts, progress)
			if err != nil {
				return err
			}
			defer a.Close()

			if save {
				if err := a.requireArchive(); err != nil {
					return err
				}
			}

			ctx, cancel := a.analysisContext(cmd.Context())
			defer cancel()

			info, err := a.analyser.RunFullAnalysis(ctx)
			if err != nil {
				return err
			}
			if save {
				if _, err := a.archive.Save(ctx, a.db.DatabaseName(), info); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
	cmd.Flags().BoolVar(&save, "archive", false, "Store the analysis as the new baseline")
	cmd.Flags().BoolVar(&progress, "progress", false, "Log each analysis stage")
	return cmd
}

func newSnapshotCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print object names and modification markers as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := a.analysisContext(cmd.Context())
			defer cancel()

			snap, err := a.analyser.GetFastSnapshot(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), snap)
		},
	}
}

func newChangesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "changes",
		Short: "List objects that changed since the archived analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireArchive(); err != nil {
				return err
			}

			ctx, cancel := a.analysisContext(cmd.Context())
			defer cancel()

			baseline, err := a.archive.Latest(ctx, a.db.DatabaseName())
			if err != nil {
				return err
			}
			snap, err := a.analyser.GetFastSnapshot(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), server.ChangesResponse{
				Database: a.db.DatabaseName(),
				Baseline: baseline.Entry,
				Changes:  analyser.Changes(baseline.Info, snap),
			})
		},
	}
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve analyses over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := server.Config{
				Addr:            a.cfg.Server.Addr,
				ReadTimeout:     a.cfg.Server.ReadTimeout,
				WriteTimeout:    a.cfg.Server.WriteTimeout,
				AnalysisTimeout: a.cfg.Database.QueryTimeout,
			}
			if addr != "" {
				cfg.Addr = addr
			}

			deps := server.Deps{
				Database: a.db.DatabaseName(),
				DB:       a.db,
				Analyser: a.analyser,
			}
			if a.archive != nil {
				deps.Archive = a.archive
			}
			return server.New(cfg, deps, a.log).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
