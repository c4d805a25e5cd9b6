package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcus/bizdesk/internal/api"
	"github.com/marcus/bizdesk/internal/config"
	"github.com/marcus/bizdesk/internal/intl"
	"github.com/marcus/bizdesk/internal/phone"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the API address and token",
	Long: `Prompts for the backend address and credentials, exchanges them for a
token and writes the result to config.json together with the preferred
language and default phone country.`,
	GroupID: "core",
	Args:    cobra.NoArgs,
	RunE:    runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().String("email", "", "Account email (skips the prompt when --password is also set)")
	loginCmd.Flags().String("password", "", "Account password")
}

// loginAnswers holds what the login form collects.
type loginAnswers struct {
	APIURL   string
	Email    string
	Password string
	Language string
	Country  string
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("enter a full URL such as http://localhost:8080")
	}
	return nil
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func languageOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(intl.SupportedLanguages))
	for _, l := range intl.SupportedLanguages {
		opts = append(opts, huh.NewOption(l.VerboseName, l.Code))
	}
	return opts
}

func countryOptions() []huh.Option[string] {
	all := phone.Default().All()
	opts := make([]huh.Option[string], 0, len(all))
	for _, c := range all {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s %s (%s)", c.Flag(), c.Name, c.Dial), c.ISO))
	}
	return opts
}

func loginForm(a *loginAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("API URL").Value(&a.APIURL).Validate(validateURL),
			huh.NewInput().Title("Email").Value(&a.Email).Validate(notBlank),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&a.Password).Validate(notBlank),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Language").Options(languageOptions()...).Value(&a.Language),
			huh.NewSelect[string]().Title("Default phone country").Options(countryOptions()...).Value(&a.Country).Height(8),
		),
	)
}

func runLogin(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	a := loginAnswers{
		APIURL:   s.cfg.APIURL,
		Language: s.cfg.Language,
		Country:  s.cfg.DefaultCountry,
	}
	a.Email, _ = cmd.Flags().GetString("email")
	a.Password, _ = cmd.Flags().GetString("password")
	if a.Email == "" || a.Password == "" {
		if err := loginForm(&a).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
	}

	token, err := login(cmd.Context(), a, s.cfg, s.log)
	if err != nil {
		return err
	}
	s.cfg.Token = token
	if err := config.Save(s.dir, s.cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s. Settings saved to %s\n", a.Email, s.dir)
	return nil
}

// login exchanges the answers for a token and copies the chosen settings
// into cfg.
func login(ctx context.Context, a loginAnswers, cfg *config.Config, log *zap.Logger) (string, error) {
	client, err := api.New(a.APIURL, "", api.WithLogger(log))
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.SubmitTimeout)
	defer cancel()
	token, err := client.Login(ctx, strings.TrimSpace(a.Email), a.Password)
	if err != nil {
		var se *api.StructuredError
		if errors.As(err, &se) && se.Message != "" {
			return "", errors.New(se.Message)
		}
		return "", err
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(a.APIURL), "/")
	if a.Language != "" {
		cfg.Language = a.Language
	}
	if a.Country != "" {
		cfg.DefaultCountry = a.Country
	}
	return token, nil
}
