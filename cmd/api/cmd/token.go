package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Raj-Randive/soar-school-management-system/internal/auth"
	"github.com/Raj-Randive/soar-school-management-system/internal/config"
	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
)

var (
	tokenUserID string
	tokenRole   string
)

type issuedToken struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a session token for an existing user id",
	RunE: func(cmd *cobra.Command, args []string) error {
		role := domain.Role(tokenRole)
		if !role.Valid() {
			return fmt.Errorf("invalid role %q", tokenRole)
		}
		if tokenUserID == "" {
			return fmt.Errorf("--user-id is required")
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return writeToken(cmd, cfg.Auth, tokenUserID, role)
	},
}

func writeToken(cmd *cobra.Command, cfg config.AuthConfig, userID string, role domain.Role) error {
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())
	if err != nil {
		return err
	}
	token, expires, err := tokens.Issue(auth.Subject{ID: userID, Role: role})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(issuedToken{Token: token, UserID: userID, Role: string(role), ExpiresAt: expires})
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&tokenUserID, "user-id", "", "User id to embed in the token")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(domain.RoleSuperAdmin), "Role to embed (superadmin or schooladmin)")
}
