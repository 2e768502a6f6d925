package cmd

import (
	"fmt"
	"time"

	"github.com/go-notification-hub/internal/config"
	"github.com/go-notification-hub/internal/domain"
	jwtinfra "github.com/go-notification-hub/internal/infrastructure/jwt"
	"github.com/go-notification-hub/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newTokenCmd(rt *runtime) *cobra.Command {
	var (
		subject    string
		role       string
		privateKey string
		publicKey  string
		expiry     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Example: `  notifyhub token --subject billing-service
  notifyhub token --subject ops --role admin --expiry 24h`,
		Args: cobra.NoArgs,
		// Signing needs only the key pair, not a store.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			_ = godotenv.Load()
			logging.InitConsole(rt.opts.logLevel)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if role != domain.RoleAdmin && role != domain.RoleService {
				return fmt.Errorf("role %q: want %s or %s: %w", role, domain.RoleAdmin, domain.RoleService, domain.ErrBadRequest)
			}
			cfg := config.Load()
			if privateKey != "" {
				cfg.JWTPrivateKeyPath = privateKey
			}
			if publicKey != "" {
				cfg.JWTPublicKeyPath = publicKey
			}
			if expiry > 0 {
				cfg.JWTExpiry = expiry
			}
			p, err := jwtinfra.NewProvider(cfg)
			if err != nil {
				return err
			}
			token, err := p.Sign(subject, role)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&subject, "subject", "", "calling service or operator name")
	f.StringVar(&role, "role", domain.RoleService, "admin or service")
	f.StringVar(&privateKey, "private-key", "", "RSA private key PEM (default from JWT_PRIVATE_KEY_PATH)")
	f.StringVar(&publicKey, "public-key", "", "RSA public key PEM (default from JWT_PUBLIC_KEY_PATH)")
	f.DurationVar(&expiry, "expiry", 0, "token lifetime (default from JWT_EXPIRY_DAYS)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
