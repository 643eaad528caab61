package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/kova/internal/firm"
	firmStore "github.com/MrJamesThe3rd/kova/internal/firm/store"
)

var (
	flagUserID   string
	flagEmail    string
	flagFullName string
	flagFirmName string
)

var ensureFirmCmd = &cobra.Command{
	Use:   "ensure-firm",
	Short: "Create a firm for a user unless the user already has one",
	RunE:  runEnsureFirm,
}

func init() {
	ensureFirmCmd.Flags().StringVar(&flagUserID, "user-id", "", "user id (UUID)")
	ensureFirmCmd.Flags().StringVar(&flagEmail, "email", "", "user email")
	ensureFirmCmd.Flags().StringVar(&flagFullName, "name", "", "user full name")
	ensureFirmCmd.Flags().StringVar(&flagFirmName, "firm", "", "firm name")

	_ = ensureFirmCmd.MarkFlagRequired("user-id")
	_ = ensureFirmCmd.MarkFlagRequired("email")
	_ = ensureFirmCmd.MarkFlagRequired("firm")

	rootCmd.AddCommand(ensureFirmCmd)
}

func runEnsureFirm(cmd *cobra.Command, _ []string) error {
	userID, err := uuid.Parse(flagUserID)
	if err != nil {
		return fmt.Errorf("invalid --user-id: %w", err)
	}

	f, created, err := firm.NewService(firmStore.New(app.db), app.logger).Ensure(cmd.Context(), firm.EnsureParams{
		UserID:   userID,
		Email:    flagEmail,
		FullName: flagFullName,
		FirmName: flagFirmName,
	})
	if err != nil {
		return err
	}

	verb := "existing"
	if created {
		verb = "created"
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s firm %s (%s)\n", verb, f.ID, f.Name)

	return nil
}
