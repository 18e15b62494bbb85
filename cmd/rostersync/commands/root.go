package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"rostersync-backend/lib/configutil"
	"rostersync-backend/lib/serviceutil"
	"rostersync-backend/lib/sqliteutil"
	"rostersync-backend/services/sync"

	"github.com/spf13/cobra"
)

type smtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type Config struct {
	Db           string      `json:"db"`
	Source       string      `json:"source"`
	Smtp         *smtpConfig `json:"smtp"`
	NotifyEmails []string    `json:"notify_emails"`
}

var rootCmd = &cobra.Command{
	Use:   "rostersync",
	Short: "rostersync extracts student records from SIS/LMS pages and syncs the changes to a roster api.",
}

var passphraseFlag *string

func init() {
	passphraseFlag = rootCmd.PersistentFlags().String(
		"passphrase", "",
		"Passphrase protecting the stored api token. Falls back to $ROSTERSYNC_PASSPHRASE.",
	)
}

func getPassphrase() string {
	if *passphraseFlag != "" {
		return *passphraseFlag
	}
	return os.Getenv("ROSTERSYNC_PASSPHRASE")
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("rostersync.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.Db == "" {
		cfg.Db = "rostersync.db"
	}
	return cfg
}

func openService(cfg Config) (sync.Service, *sql.DB) {
	database, err := sqliteutil.OpenDB(sync.Schema, cfg.Db)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}

	options := sync.Options{NotifyEmails: cfg.NotifyEmails}
	if cfg.Smtp != nil {
		options.Smtp = &sync.SmtpConfig{
			Server:       cfg.Smtp.Server,
			Port:         cfg.Smtp.Port,
			EmailAddress: cfg.Smtp.EmailAddress,
			Password:     cfg.Smtp.Password,
		}
	}
	return sync.NewService(database, options), database
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
