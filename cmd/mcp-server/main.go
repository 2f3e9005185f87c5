// Package main provides the MCP stdio entry point of the RIF protocol server.
// It requires no external database; cases are kept in SQLite under the data
// directory.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rif-protocol-server/internal/config"
	"github.com/rif-protocol-server/internal/mcp"
)

func main() {
	cfg := config.LoadLiteConfig()

	// stdout carries the protocol; everything else goes to stderr
	log.SetOutput(os.Stderr)
	log.Printf("Data directory: %s", cfg.DataDir)

	server, err := mcp.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received, gracefully shutting down MCP server...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Printf("MCP server failed: %v", err)
		return
	}

	log.Println("RIF MCP server stopped")
}
