package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/simonvc/pocketledger/internal/client"
	"github.com/simonvc/pocketledger/internal/server"
	"github.com/simonvc/pocketledger/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("server") {
			// Start embedded server in background
			a, err := openApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.New(a.svc, a.hub, log, "127.0.0.1:8888")
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Error().Err(err).Msg("embedded server")
				}
			}()
			defer srv.Shutdown(context.Background())
			c = client.New("http://127.0.0.1:8888", cfg.User)

			// Wait for server to be ready
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			for {
				if err := c.Ping(ctx); err == nil {
					break
				}
				if ctx.Err() != nil {
					return fmt.Errorf("timeout waiting for embedded server")
				}
				time.Sleep(50 * time.Millisecond)
			}
		}

		app := tui.NewApp(c)
		p := tea.NewProgram(app, tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
