// Command token-generator prints a signed access token for local testing of
// the API. The secret and lifetime come from the same configuration as the
// server (SCRY_AUTH_JWT_SECRET, SCRY_AUTH_TOKEN_LIFETIME_MINUTES).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/config"
	"github.com/phrazzld/scry-adaptive/internal/service/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "token-generator: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token-generator", flag.ContinueOnError)
	user := fs.String("user", "", "user ID to issue the token for (random if empty)")
	secret := fs.String("secret", "", "signing secret (defaults to SCRY_AUTH_JWT_SECRET)")
	minutes := fs.Int("minutes", 60, "token lifetime in minutes")
	header := fs.Bool("header", false, "print a full Authorization header")
	if err := fs.Parse(args); err != nil {
		return err
	}

	userID := uuid.New()
	if *user != "" {
		parsed, err := uuid.Parse(*user)
		if err != nil {
			return fmt.Errorf("invalid -user: %w", err)
		}
		userID = parsed
	}

	cfg := config.AuthConfig{
		JWTSecret:            *secret,
		TokenLifetimeMinutes: *minutes,
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv(config.EnvPrefix + "_AUTH_JWT_SECRET")
	}

	svc, err := auth.NewTokenService(cfg)
	if err != nil {
		return err
	}
	token, err := svc.GenerateToken(context.Background(), userID)
	if err != nil {
		return err
	}

	if *header {
		_, err = fmt.Fprintf(out, "Authorization: Bearer %s\n", token)
	} else {
		_, err = fmt.Fprintf(out, "user_id=%s\ntoken=%s\n", userID, token)
	}
	return err
}
