package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/far120/mystudy/internal/config"
	"github.com/far120/mystudy/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve [lesson.md...]",
	Aliases: []string{"s"},
	Short:   "Start the lesson preview server with live reload",
	Long: `Start the lesson preview server. Lessons are rendered to HTML in the
browser and the page reloads automatically when a lesson file changes.

Examples:
  mystudy serve                    # Serve the whole curriculum
  mystudy serve html-css/01-basics.md  # Serve specific lesson files
  mystudy serve -p 3000            # Serve on port 3000
  mystudy serve --no-open          # Don't open the browser`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("no-open", false, "Don't open browser automatically")
	serveCmd.Flags().Bool("drafts", false, "Include draft lessons")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.no-open", serveCmd.Flags().Lookup("no-open"))
	viper.BindPFlag("lessons.include_drafts", serveCmd.Flags().Lookup("drafts"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Serve only the named lesson files when arguments are given
	cfg.TargetFiles = args

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutting down server...")

		if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
			log.Printf("Error during server shutdown: %v", shutdownErr)
		}

		cancel()
	}()

	fmt.Printf("Starting mystudy server at http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
