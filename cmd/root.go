package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/client"
	"github.com/simonvc/pocketledger/internal/config"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	flagConfig string

	v   = viper.New()
	cfg *config.Config
	log = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "pocketledger",
	Short: "Personal finance ledger with wallets and budgets",
	Long: "A personal finance ledger backed by SQLite. Wallets hold balances, " +
		"transactions move money, and budgets track category spending with warnings.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(v, flagConfig); err != nil {
			return err
		}
		log, err = logger.Configure(cfg.Log.Level, cfg.Log.Format, os.Stderr)
		return err
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default ./pocketledger.yaml)")
	pf.String("server", "http://localhost:8888", "Server address")
	pf.String("db", "pocketledger.db", "SQLite database path")
	pf.String("user", "", "Acting user id, sent as "+client.UserHeader)
	pf.String("log-level", "info", "Log level")
	pf.String("log-format", "console", "Log format: console or json")

	bind("server.url", "server")
	bind("database.path", "db")
	bind("user", "user")
	bind("log.level", "log-level")
	bind("log.format", "log-format")
}

func bind(key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func Execute() error {
	return rootCmd.Execute()
}

// apiClient returns a client for the configured server acting as the
// configured user.
func apiClient() (*client.Client, error) {
	if cfg.User == "" {
		return nil, errors.New("no acting user: pass --user or set POCKETLEDGER_USER")
	}
	return client.New(cfg.Server.URL, cfg.User), nil
}

// parseWhen accepts a calendar date (midnight UTC) or an RFC3339 time.
func parseWhen(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want YYYY-MM-DD or RFC3339", s)
	}
	return t.UTC(), nil
}

// truncate shortens s to at most n runes, marking the cut with "..".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 2 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-2]) + ".."
}

func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func money(amount decimal.Decimal, currency string) string {
	if _, ok := ledger.Currencies[currency]; ok {
		return ledger.FormatAmount(amount, currency) + " " + currency
	}
	return ledger.FormatAmount(amount, currency)
}
