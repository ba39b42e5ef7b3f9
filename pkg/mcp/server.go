package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/tripweave/itinerary-engine/pkg/errors"
	"github.com/tripweave/itinerary-engine/pkg/orchestrator"
	"github.com/tripweave/itinerary-engine/pkg/types"
)

// Generator is the orchestrator surface exposed over MCP
type Generator interface {
	Start(ctx context.Context, req *types.GenerationRequest, currentUser *types.User) (string, <-chan *orchestrator.Result, error)
	RetrySave(ctx context.Context) *orchestrator.Result
	Cancel()
	IsGenerating() bool
	Progress() orchestrator.Progress
	Error() *errors.GenerationError
	StrategyName() string
}

// MCPServer exposes itinerary generation as MCP tools. Generation runs in
// the background so cancel and status calls are served while it is in flight.
type MCPServer struct {
	generator Generator
	mcpServer *server.MCPServer
	logger    *zap.Logger

	mu     sync.Mutex
	runID  string
	result *orchestrator.Result
}

// NewMCPServer creates a new MCP server backed by generator
func NewMCPServer(generator Generator, version string, logger *zap.Logger) *MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	mcpServer := server.NewMCPServer(
		"Itinerary Engine",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s := &MCPServer{
		generator: generator,
		mcpServer: mcpServer,
		logger:    logger,
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	generateTool := mcp.NewTool("generate_itinerary",
		mcp.WithDescription("Start generating and saving a day-by-day travel itinerary. Returns the run id at once; poll generation_status and fetch generation_result."),
		mcp.WithString("request_json",
			mcp.Required(),
			mcp.Description("JSON-encoded generation request (destination, startDate, endDate, preferenceProfile, userInfo, ...)"),
		),
		mcp.WithString("user_id",
			mcp.Description("Authenticated user id; overrides userInfo.uid in the request"),
		),
	)
	s.mcpServer.AddTool(generateTool, s.handleGenerate)

	cancelTool := mcp.NewTool("cancel_generation",
		mcp.WithDescription("Cancel the itinerary generation in progress"),
	)
	s.mcpServer.AddTool(cancelTool, s.handleCancel)

	statusTool := mcp.NewTool("generation_status",
		mcp.WithDescription("Get the stage, percent and last error of the current generation"),
	)
	s.mcpServer.AddTool(statusTool, s.handleStatus)

	resultTool := mcp.NewTool("generation_result",
		mcp.WithDescription("Get the result of the last generation once it has finished"),
	)
	s.mcpServer.AddTool(resultTool, s.handleResult)

	retrySaveTool := mcp.NewTool("retry_save",
		mcp.WithDescription("Retry saving the last itinerary that was generated but not stored"),
	)
	s.mcpServer.AddTool(retrySaveTool, s.handleRetrySave)
}

// handleGenerate handles the generate_itinerary tool call
func (s *MCPServer) handleGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requestJSON, err := request.RequireString("request_json")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid request_json: %v", err)), nil
	}

	req, user, err := ParseRequest(requestJSON, request.GetString("user_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.logger.Info("generate_itinerary called",
		zap.String("destination", req.Destination),
		zap.String("strategy", s.generator.StrategyName()),
	)

	// The run outlives this call
	runID, done, err := s.generator.Start(context.WithoutCancel(ctx), req, user)
	if err != nil {
		return resultToTool(&orchestrator.Result{Success: false, Error: errors.Normalize(err)}), nil
	}

	s.mu.Lock()
	s.runID = runID
	s.result = nil
	s.mu.Unlock()

	go s.collect(runID, done)

	return mcp.NewToolResultText(s.status()), nil
}

// collect stores the outcome of runID unless a newer run replaced it
func (s *MCPServer) collect(runID string, done <-chan *orchestrator.Result) {
	result := <-done

	s.mu.Lock()
	if s.runID == runID {
		s.result = result
	}
	s.mu.Unlock()

	s.logger.Info("generation finished",
		zap.String("run_id", runID),
		zap.Bool("success", result.Success),
		zap.String("itinerary_id", result.ItineraryID),
	)
}

// handleCancel handles the cancel_generation tool call
func (s *MCPServer) handleCancel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.generator.IsGenerating() {
		return mcp.NewToolResultText("No generation in progress"), nil
	}
	s.generator.Cancel()
	return mcp.NewToolResultText("Generation cancelled"), nil
}

// handleStatus handles the generation_status tool call
func (s *MCPServer) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.status()), nil
}

// handleResult handles the generation_result tool call
func (s *MCPServer) handleResult(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	runID, result := s.runID, s.result
	s.mu.Unlock()

	switch {
	case runID == "":
		return mcp.NewToolResultText("No generation has been started"), nil
	case result == nil:
		return mcp.NewToolResultText(s.status()), nil
	default:
		return resultToTool(result), nil
	}
}

func (s *MCPServer) status() string {
	s.mu.Lock()
	runID, ready := s.runID, s.result != nil
	s.mu.Unlock()
	return FormatStatus(s.generator, runID, ready)
}

// handleRetrySave handles the retry_save tool call
func (s *MCPServer) handleRetrySave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return resultToTool(s.generator.RetrySave(ctx)), nil
}

// ServeStdio starts the MCP server on stdio
func (s *MCPServer) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ParseRequest decodes a tool's request JSON and resolves the caller
func ParseRequest(requestJSON, userID string) (*types.GenerationRequest, *types.User, error) {
	var req types.GenerationRequest
	if err := json.Unmarshal([]byte(requestJSON), &req); err != nil {
		return nil, nil, fmt.Errorf("request_json is not a valid generation request: %v", err)
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return &req, nil, nil
	}
	user := &types.User{UID: userID}
	if req.UserInfo != nil {
		user.Email = req.UserInfo.Email
	}
	return &req, user, nil
}

// FormatStatus renders the generator state as JSON. runID is the last run
// started over MCP and ready reports whether its result can be fetched.
func FormatStatus(g Generator, runID string, ready bool) string {
	status := struct {
		RunID       string                  `json:"runId,omitempty"`
		Generating  bool                    `json:"generating"`
		ResultReady bool                    `json:"resultReady"`
		Strategy    string                  `json:"strategy"`
		Progress    orchestrator.Progress   `json:"progress"`
		Error       *errors.GenerationError `json:"error,omitempty"`
	}{
		RunID:       runID,
		Generating:  g.IsGenerating(),
		ResultReady: ready,
		Strategy:    g.StrategyName(),
		Progress:    g.Progress(),
		Error:       g.Error(),
	}
	b, _ := json.MarshalIndent(status, "", "  ")
	return string(b)
}

func resultToTool(result *orchestrator.Result) *mcp.CallToolResult {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err))
	}
	if !result.Success {
		return mcp.NewToolResultError(string(b))
	}
	return mcp.NewToolResultText(string(b))
}
