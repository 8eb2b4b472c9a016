package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	mcpadapter "zdguide/internal/adapters/mcp"
	"zdguide/internal/bootstrap"
)

func main() {
	configFlag := flag.String("config", "", "config file")
	flag.Parse()

	// Stdout carries the protocol; logs only go to a configured file
	rt, err := bootstrap.Open(context.Background(), bootstrap.Options{ConfigFile: *configFlag, Interactive: true})
	if err != nil {
		log.Fatalf("zdguide-mcp: %v", err)
	}
	defer rt.Close()

	mcpServer := server.NewMCPServer(
		"zdguide-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, rt.App)
	mcpadapter.RegisterWriteTools(mcpServer, rt.App)

	if err := server.ServeStdio(mcpServer); err != nil {
		rt.Logger.Error("stdio server stopped", zap.Error(err))
		_ = rt.Close()
		log.Fatalf("zdguide-mcp: %v", err)
	}
}
