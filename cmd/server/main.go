package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chat-relay/internal/config"
	"chat-relay/internal/handlers"
	"chat-relay/internal/router"
	"chat-relay/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Printf("✗ %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		port    string
		envFile string
	)

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Relay chat messages to an LLM completion API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var envFiles []string
			if envFile != "" {
				envFiles = append(envFiles, envFile)
			}
			cfg := config.Load(envFiles...)
			if port != "" {
				cfg.Port = port
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "env file to load instead of .env")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log.Println("🚀 Starting Chat Relay...")

	// ──── Step 1: Validate Configuration ────
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	systemPrompt, err := services.ResolveSystemPrompt(cfg.Persona, cfg.SystemPrompt)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log.Printf("✓ Environment variables loaded (env=%s)", cfg.Env)

	// ──── Step 2: Initialize Completion Client ────
	completer, closeCompleter, err := services.NewCompleter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("completion client initialization failed: %w", err)
	}
	defer closeCompleter()
	log.Printf("✓ %s completion client initialized", cfg.Provider)
	if systemPrompt != "" {
		log.Println("✓ System prompt enabled")
	}

	// ──── Step 3: Start HTTP Server ────
	chatHandler := handlers.NewChatHandler(completer, systemPrompt, cfg.ResponseFormat)
	r := router.New(chatHandler, cfg.CORSAllowedOrigin)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	log.Printf("✓ Chat Relay ready on http://localhost:%s", cfg.Port)
	log.Printf("  Chat: POST http://localhost:%s/chat", cfg.Port)

	return serve(server, ln, sigChan, shutdownTimeout)
}

// serve runs server on ln until a value arrives on stop, then drains
// in-flight requests for up to drain before returning.
func serve(server *http.Server, ln net.Listener, stop <-chan os.Signal, drain time.Duration) error {
	done := make(chan error, 1)

	// Graceful shutdown
	go func() {
		<-stop
		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), drain)
		defer cancel()
		done <- server.Shutdown(ctx)
	}()

	if err := server.Serve(ln); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	// Serve returns as soon as Shutdown starts; wait for the drain.
	if err := <-done; err != nil {
		return fmt.Errorf("shutdown incomplete: %w", err)
	}
	log.Println("✓ Server stopped")
	return nil
}
