// Command mcp serves the Timeless Jewel tools over MCP on stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"timeless-mapper/internal/config"
	"timeless-mapper/internal/logger"
	"timeless-mapper/internal/mcpserver"
	"timeless-mapper/internal/refdata"
	"timeless-mapper/internal/telemetry"
)

var version = "dev"

func main() {
	// stdout carries the protocol stream.
	logger.UseStderr()

	cfg, err := config.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Error("MCP", fmt.Sprintf("parse flags: %v", err))
		os.Exit(2)
	}
	if cfg.MCPTransport != "stdio" {
		logger.Error("MCP", fmt.Sprintf("unsupported transport %q", cfg.MCPTransport))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "timeless-mapper-mcp", cfg.OTelEndpoint)
	if err != nil {
		logger.Warn("OTel", fmt.Sprintf("Tracing disabled: %v", err))
	}
	defer shutdownTracing(context.Background())

	data, err := refdata.NewLoader(cfg.DataDir, refdata.Sources{
		TreeFile:    cfg.TreeFile,
		WeightsFile: cfg.WeightsFile,
		TreeURL:     cfg.TreeURL,
		WeightsURL:  cfg.WeightsURL,
	}).Load(ctx)
	if err != nil {
		logger.Error("DATA", fmt.Sprintf("Load failed: %v", err))
		os.Exit(1)
	}

	logger.Info("MCP", "Serving tools on stdio")
	if err := mcpserver.NewServer(cfg, data, version).Serve(ctx); err != nil {
		logger.Error("MCP", err.Error())
		os.Exit(1)
	}
}
