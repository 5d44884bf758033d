package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/testlens/internal/server"
)

const defaultAddr = ":8080"

var serveAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report API over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVarP(&serveAddr, "addr", "a", defaultAddr, "HTTP listen address")
	addPipelineFlags(cmd)
	addBucketFlags(cmd)
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Server.Addr)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()
	p, st, closeFn, err := buildPipeline(ctx, s, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	var reports server.Reports
	if st != nil {
		reports = st
	}
	srv := server.New(p, reports, server.Options{
		AllowedOrigins: fileCfg.Server.AllowedOrigins,
		Timeout:        s.llm.Timeout + 30*time.Second,
		Logger:         logger,
	})
	return srv.ListenAndServe(ctx, serveAddr)
}
