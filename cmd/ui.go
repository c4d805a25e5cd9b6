package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/marcus/bizdesk/internal/intl"
	"github.com/marcus/bizdesk/pkg/console"
)

var uiCmd = &cobra.Command{
	Use:     "ui",
	Short:   "Open the console (default)",
	GroupID: "core",
	Args:    cobra.NoArgs,
	RunE:    runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("the console needs a terminal; use 'bizdesk list' for scripts")
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	client, err := s.client()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), s.cfg.SubmitTimeout)
	defer cancel()
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("fetch current user: %w", err)
	}

	lang := s.cfg.Language
	if !cmd.Flags().Changed("lang") && os.Getenv("BIZDESK_LANG") == "" {
		if _, ok := intl.LookupLanguage(user.Language); ok {
			lang = user.Language
		}
	}
	t, err := intl.New(lang)
	if err != nil {
		t = s.translator()
	}

	s.log.Info("console start",
		zap.String("user", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("lang", t.Language().Code),
	)

	m := console.New(console.Deps{
		Client:         client,
		T:              t,
		Log:            s.log,
		User:           *user,
		DefaultCountry: s.cfg.DefaultCountry,
		Currency:       s.cfg.Currency,
		Timeout:        s.cfg.SubmitTimeout,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
