package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tripweave/itinerary-engine/pkg/orchestrator"
	"github.com/tripweave/itinerary-engine/pkg/types"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one itinerary from a request file",
		Run:   runGenerate,
	}

	cmd.Flags().StringP("request", "r", "", "Path to the request JSON, or - for stdin (required)")
	cmd.Flags().StringP("user", "u", "", "Authenticated user id (default: userInfo.uid from the request)")
	cmd.Flags().Bool("legacy", false, "Print the persisted legacy view instead of the structured result")

	cmd.MarkFlagRequired("request")

	RootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	path, _ := cmd.Flags().GetString("request")
	userID, _ := cmd.Flags().GetString("user")
	legacy, _ := cmd.Flags().GetBool("legacy")

	req, err := readRequest(path)
	if err != nil {
		exitErr("read request", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, log, err := bootstrap(ctx)
	if err != nil {
		exitErr("bootstrap", err)
	}
	defer log.Sync()
	defer eng.Close()

	var user *types.User
	if userID != "" {
		user = &types.User{UID: userID}
	}

	result := eng.Orchestrator.GenerateItinerary(ctx, req, user)

	var out any = result
	if legacy && result.Data != nil {
		view, err := orchestrator.LegacyView(result.Data)
		if err != nil {
			exitErr("render legacy view", err)
		}
		out = view
	}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))

	if !result.Success {
		_ = eng.Close()
		log.Sync()
		os.Exit(1)
	}
}

func readRequest(path string) (*types.GenerationRequest, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var req types.GenerationRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request JSON: %w", err)
	}
	return &req, nil
}
