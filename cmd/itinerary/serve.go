package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tripweave/itinerary-engine/pkg/mcp"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve itinerary tools over MCP stdio",
		Run:   runServe,
	}

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, log, err := bootstrap(ctx)
	if err != nil {
		exitErr("bootstrap", err)
	}
	defer log.Sync()
	defer eng.Close()

	server := mcp.NewMCPServer(eng.Orchestrator, version, log.Logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ServeStdio()
	}()

	select {
	case <-ctx.Done():
		log.Info("received shutdown signal")
		eng.Orchestrator.Cancel()
	case err := <-serverErr:
		if err != nil {
			log.Error("MCP server stopped", zap.Error(err))
		}
	}
}
