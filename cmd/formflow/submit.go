package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/internal/submission"
	"github.com/goliatone/go-formflow/pkg/formmodel"
)

var errApplicationIncomplete = errors.New("application is incomplete")

var submitCmd = &cobra.Command{
	Use:   "submit <application-id>",
	Short: "Send a complete application to the submission endpoint",
	Long: `Submit rebuilds the application's model, refuses it while any section
is incomplete or the terms are not accepted, posts the submission envelope to
the configured endpoint and marks the application submitted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		reg, err := loadForms()
		if err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		app, model, err := buildModel(ctx, st, reg, args[0])
		if err != nil {
			return err
		}
		if app.Status != store.StatusInProgress {
			return fmt.Errorf("application %s is already %s", app.ID, app.Status)
		}
		if !model.Validation().IsValid {
			return reportIncomplete(cmd.ErrOrStderr(), model)
		}
		if terms := model.ValidateTerms(model.Answers()); !terms.IsValid {
			return errors.New("the terms and conditions have not been accepted")
		}

		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(model.SubmissionEnvelope())
		}

		client := submission.New(cfg.Submission.URL,
			submission.WithToken(cfg.Submission.Token),
			submission.WithMaxRetries(cfg.Submission.MaxRetries),
		)
		submitCtx := ctx
		if cfg.Submission.Timeout > 0 {
			var cancel context.CancelFunc
			submitCtx, cancel = context.WithTimeout(ctx, cfg.Submission.Timeout)
			defer cancel()
		}
		receipt, err := client.Submit(submitCtx, model.SubmissionEnvelope())
		if err != nil {
			return err
		}
		if err := st.SetStatus(ctx, app.ID, store.StatusSubmitted); err != nil {
			// The endpoint has the application; the idempotency key makes a retry safe.
			return fmt.Errorf("submitted as %s but could not record it: %w", receipt.Reference, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Submitted %s: reference %s (%d)\n", app.ID, receipt.Reference, receipt.Status)
		return nil
	},
}

// reportIncomplete prints the progress of model and returns
// errApplicationIncomplete, joined with any error writing the report.
func reportIncomplete(w io.Writer, model *formmodel.Model) error {
	return errors.Join(errApplicationIncomplete, printProgress(w, model))
}

func init() {
	submitCmd.Flags().Bool("dry-run", false, "print the submission envelope instead of sending it")
	rootCmd.AddCommand(submitCmd)
}
