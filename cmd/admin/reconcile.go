package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/kova/internal/milestone"
	milestoneStore "github.com/MrJamesThe3rd/kova/internal/milestone/store"
)

var flagProjectID string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute milestone totals from their payment rows",
	RunE:  runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&flagProjectID, "project", "", "only reconcile milestones of this project")
	rootCmd.AddCommand(reconcileCmd)
}

type milestoneLister interface {
	ListMilestoneIDs(ctx context.Context, projectID *uuid.UUID) ([]uuid.UUID, error)
}

type reconciler interface {
	Reconcile(ctx context.Context, milestoneID uuid.UUID) (*milestone.Milestone, bool, error)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	var projectID *uuid.UUID

	if flagProjectID != "" {
		id, err := uuid.Parse(flagProjectID)
		if err != nil {
			return fmt.Errorf("invalid --project: %w", err)
		}

		projectID = &id
	}

	store := milestoneStore.New(app.db)

	return reconcileAll(cmd.Context(), store, milestone.NewLedger(store, app.logger), projectID, cmd.OutOrStdout())
}

// reconcileAll reconciles every listed milestone. Overpaid milestones are
// reported and skipped; any other failure stops the run.
func reconcileAll(ctx context.Context, lister milestoneLister, r reconciler, projectID *uuid.UUID, out io.Writer) error {
	ids, err := lister.ListMilestoneIDs(ctx, projectID)
	if err != nil {
		return err
	}

	var changed, overpaid int

	for _, id := range ids {
		m, updated, err := r.Reconcile(ctx, id)

		switch {
		case errors.Is(err, milestone.ErrOverpaid):
			overpaid++
			fmt.Fprintf(out, "skipped %s: %v\n", id, err)
		case err != nil:
			return fmt.Errorf("reconciling %s: %w", id, err)
		case updated:
			changed++
			fmt.Fprintf(out, "fixed %s: paid %s, %s\n", id, m.AmountPaid.StringFixed(2), m.Status)
		}
	}

	fmt.Fprintf(out, "checked %d milestones, fixed %d, overpaid %d\n", len(ids), changed, overpaid)

	return nil
}
