package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication helpers",
	}

	cmd.AddCommand(newAuthTokenCmd())
	return cmd
}

func newAuthTokenCmd() *cobra.Command {
	var (
		principal string
		secret    string
		expires   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate an HS256 bearer token and save it to the active profile",
		Long:  "Generate an HS256 JWT for a service running in hs256 auth mode. The secret must match the service's JWT_SECRET. The token is saved to the active profile automatically.",
		Example: `  # Generate a token for analyst, prompting for the secret
  pbirag auth token --principal analyst

  # Generate a token with custom expiry
  pbirag auth token --principal analyst --secret mysecret --expires 48h`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if secret == "" {
				prompted, err := promptSecret("Signing secret: ")
				if err != nil {
					return err
				}
				secret = prompted
			}
			if secret == "" {
				return fmt.Errorf("--secret is required")
			}

			now := time.Now()
			claims := jwt.MapClaims{
				"sub": principal,
				"iat": now.Unix(),
				"exp": now.Add(expires).Unix(),
			}

			token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
			signed, err := token.SignedString([]byte(secret))
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			cfg, err := LoadUserConfig()
			if err != nil {
				cfg = &UserConfig{Profiles: map[string]Profile{}}
			}
			profileName := cfg.CurrentProfile
			if profileName == "" {
				profileName = "default"
				cfg.CurrentProfile = profileName
			}
			if cfg.Profiles == nil {
				cfg.Profiles = map[string]Profile{}
			}
			p := cfg.Profiles[profileName]
			p.Token = signed
			cfg.Profiles[profileName] = p
			if err := SaveUserConfig(cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			_, _ = fmt.Fprintln(os.Stdout, signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&principal, "principal", "", "Principal name (JWT sub claim)")
	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret (prompted when omitted)")
	cmd.Flags().DurationVar(&expires, "expires", 24*time.Hour, "Token expiry duration")
	_ = cmd.MarkFlagRequired("principal")

	return cmd
}

// promptSecret reads a secret from the terminal without echo. Fails when
// stdin is not a terminal so scripted use must pass --secret.
func promptSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--secret is required when stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return string(raw), nil
}
