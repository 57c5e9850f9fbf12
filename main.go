package main

import (
	"fmt"
	"os"
	"time"

	"chatiefy-tui/api"
	"chatiefy-tui/chat"
	"chatiefy-tui/config"
	"chatiefy-tui/memes"
	"chatiefy-tui/session"
	"chatiefy-tui/ui"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfg = config.Load()

var rootCmd = &cobra.Command{
	Use:   "chatiefy-tui",
	Short: "Terminal client for the Chatiefy anonymous random chat",
	RunE:  run,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.APIBaseURL, "api-url", cfg.APIBaseURL, "Chatiefy API base URL")
	flags.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the local identity database")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file (default: discard)")
	flags.IntVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "chat poll interval in seconds")
	flags.IntVar(&cfg.SearchAttempts, "search-attempts", cfg.SearchAttempts, "partner search attempt cap")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal, so logs go to a file or nowhere
	logger := zerolog.Nop()
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = zerolog.New(f).With().Timestamp().Logger()
	}

	idstore, err := session.OpenIdentityStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer idstore.Close()

	store := session.NewStore()
	if identity, err := idstore.Load(); err == nil {
		store = session.NewStoreWithIdentity(identity)
		logger.Info().Str("username", identity.User.Username).Msg("loaded identity")
	} else if err != session.ErrNoIdentity {
		logger.Warn().Err(err).Msg("load identity failed")
	}

	client := api.New(cfg.APIBaseURL)
	client.SetTimeout(time.Duration(cfg.RequestTimeout) * time.Second)

	gallery := memes.NewGallery(client)

	app := ui.NewApp(store, idstore, gallery, client, logger)
	driver := chat.NewDriver(store, client, app, logger)
	driver.PollInterval = time.Duration(cfg.PollInterval) * time.Second
	driver.SearchInterval = time.Duration(cfg.PollInterval) * time.Second
	driver.SearchAttempts = uint64(cfg.SearchAttempts)
	app.SetDriver(driver)

	return app.Run()
}
