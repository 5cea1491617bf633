package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/client"
	"github.com/campavao/my-places/internal/tui"
)

type options struct {
	apiURL    string
	tokenFile string
	logFile   string
	export    string
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logOut, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logOut.Close()
	logger := log.New(logOut, "[my-places] ", log.LstdFlags)

	api, err := client.New(opts.apiURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if opts.export != "" {
		if err := exportCSV(api, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting places: %v\n", err)
			os.Exit(1)
		}
		return
	}

	app := tui.New(api, auth.NewSession(), opts.tokenFile, logger)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	loadDotEnv(".env")
	loadDotEnv(".env.local")

	opts := options{}
	flag.StringVar(&opts.apiURL, "api", envOrDefault("PLACES_API_URL", "http://localhost:8080"), "Base URL of the my-places API")
	flag.StringVar(&opts.tokenFile, "token-file", "", "Where the session token is kept (default: ~/.my-places/token)")
	flag.StringVar(&opts.logFile, "log", "", "Log file (default: ~/.my-places/places.log)")
	flag.StringVar(&opts.export, "export", "", "Write your places as CSV to this path and exit")
	flag.Parse()

	if opts.tokenFile == "" || opts.logFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return options{}, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir := filepath.Join(home, ".my-places")
		if err := os.MkdirAll(configDir, 0o700); err != nil {
			return options{}, fmt.Errorf("failed to create config directory: %w", err)
		}
		if opts.tokenFile == "" {
			opts.tokenFile = filepath.Join(configDir, "token")
		}
		if opts.logFile == "" {
			opts.logFile = filepath.Join(configDir, "places.log")
		}
	}
	return opts, nil
}

// exportCSV downloads the signed-in user's places using the stored token.
func exportCSV(api *client.Client, opts options) error {
	token, err := client.LoadToken(opts.tokenFile)
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("not signed in; run without -export first")
	}
	api.SetToken(token)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := os.Create(opts.export)
	if err != nil {
		return err
	}
	defer out.Close()

	return api.ExportCSV(ctx, out)
}
