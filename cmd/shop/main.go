package main

import (
	"flag"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sweetshop/internal/client"
	"sweetshop/internal/config"
	"sweetshop/internal/logger"
	"sweetshop/internal/tui"
)

func main() {
	cfg := config.LoadClient()
	apiURL := flag.String("api", cfg.APIURL, "base URL of the sweet shop API")
	sessionFile := flag.String("session", cfg.SessionFile, "where to keep the login session (defaults to the user config dir)")
	flag.Parse()

	// the terminal belongs to the UI, so logs go to stderr
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel, "console")

	path := *sessionFile
	if path == "" {
		var err error
		if path, err = client.DefaultSessionPath(); err != nil {
			log.Fatal().Err(err).Msg("failed to locate session file")
		}
	}

	api := client.New(*apiURL, client.NewFileSessionStore(path))
	model := tui.New(client.NewAuthService(api), client.NewSweetService(api))

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal().Err(err).Msg("terminal ui exited")
	}
}
