// ABOUTME: Entry point for the agentcrew CLI
// ABOUTME: Thin collaborator that drives the metadata store: init, status, cleanup, list

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/mkykode/agentcrew/internal/config"
	"github.com/mkykode/agentcrew/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: agentcrew <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  init               Initialize agentcrew in the current project")
		fmt.Println("  status             Display session and agent statistics")
		fmt.Println("  cleanup [-days N]  Delete old completed sessions")
		fmt.Println("  list               Show available agent types")
		fmt.Println("  version            Print version")
		os.Exit(1)
	}

	// Keep CLI output clean; store logs go to stderr at warn and above.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(ctx)
	case "status":
		err = runStatus(ctx)
	case "cleanup":
		err = runCleanup(ctx, os.Args[2:])
	case "list":
		err = runList()
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runInit(ctx context.Context) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	if config.IsInitialized(root) {
		return fmt.Errorf("agentcrew is already initialized in this project, use 'agentcrew status' to check current state")
	}

	cfg := config.New(filepath.Base(root), root)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving configuration: %w", err)
	}
	color.Green("✓ Created %s", config.FilePath(root))

	if err := os.MkdirAll(config.LogsDir(root), 0755); err != nil {
		return fmt.Errorf("creating logs directory: %w", err)
	}

	st, err := store.NewSQLiteStore(config.DatabasePath(root))
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer st.Close()

	// First cleanup pass has nothing to remove; it proves the store works.
	if _, err := st.Cleanup(ctx, cfg.RetainDays); err != nil {
		return fmt.Errorf("running initial cleanup: %w", err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		return err
	}
	color.Green("✓ Database initialized (schema version %d)", stats.SchemaVersion)

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  agentcrew list     show available agent types")
	fmt.Println("  agentcrew status   check current state")
	return nil
}

func runStatus(ctx context.Context) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(ctx)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Printf("%s\n", cfg.ProjectName)
	fmt.Printf("  Sessions:          %d\n", stats.Sessions)
	fmt.Printf("  Active agents:     %d\n", stats.ActiveAgents)
	fmt.Printf("  Pending questions: %d\n", stats.PendingQuestions)
	fmt.Printf("  Interactions:      %d\n", stats.TotalInteractions)
	fmt.Printf("  Schema version:    %d\n", stats.SchemaVersion)
	return nil
}

func runCleanup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	days := fs.Int("days", -1, "retention window in days (defaults to config retain_days)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	retainDays := cfg.RetainDays
	if *days >= 0 {
		retainDays = *days
	}

	result, err := st.Cleanup(ctx, retainDays)
	if err != nil {
		return err
	}

	if result.SessionsDeleted == 0 && result.OrphansDeleted == 0 {
		fmt.Println("No old data to clean up")
		return nil
	}
	color.Green("✓ Deleted %d sessions and %d orphaned interactions",
		result.SessionsDeleted, result.OrphansDeleted)
	return nil
}

func runList() error {
	fmt.Println("Available agent types:")
	fmt.Println("  claude  Anthropic Claude Code (local execution)")
	fmt.Println("  gpt     OpenAI GPT/Codex (API-based)")
	fmt.Println("  jules   Google Jules/Gemini (GitHub integration)")
	return nil
}

// openStore loads the project config from the working directory and opens
// the store it points at.
func openStore() (*store.SQLiteStore, *config.Config, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, err
	}

	st, err := store.NewSQLiteStore(config.DatabasePath(root))
	if err != nil {
		return nil, nil, err
	}
	return st, cfg, nil
}
