package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/kova/internal/auth"
	"github.com/MrJamesThe3rd/kova/internal/firm"
	firmStore "github.com/MrJamesThe3rd/kova/internal/firm/store"
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue an API bearer token for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	if app.cfg.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}

	userID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	p, err := firm.NewService(firmStore.New(app.db), app.logger).Principal(cmd.Context(), userID)
	if err != nil {
		return err
	}

	token, err := auth.NewTokens(app.cfg.Auth.JWTSecret, app.cfg.Auth.TokenTTL).Issue(p)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)

	return nil
}
