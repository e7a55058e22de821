package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/internal/wizard"
	"github.com/goliatone/go-formflow/pkg/forms/grant"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/preflight"
	"github.com/goliatone/go-formflow/pkg/upload"
)

var wizardCmd = &cobra.Command{
	Use:   "wizard [form-id]",
	Short: "Fill in an application on the terminal",
	Long: `Wizard starts a new application for form-id (default: awards-for-all),
or resumes one with --resume, and walks its steps. Answers are saved after
every valid step so an interrupted session can be resumed.`,
	Args: cobra.MaximumNArgs(1),
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

		app := store.Application{FormID: grant.ID, Locale: i18n.NormalizeLocale(cfg.Locale)}
		if len(args) == 1 {
			app.FormID = args[0]
		}
		if resume, _ := cmd.Flags().GetString("resume"); resume != "" {
			id, err := parseID(resume)
			if err != nil {
				return err
			}
			if app, err = st.Load(ctx, id); err != nil {
				return err
			}
		} else {
			if _, err := lookupForm(reg, app.FormID); err != nil {
				return err
			}
			if err := st.Create(ctx, &app); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Started application %s\n", app.ID)
		}

		f, err := lookupForm(reg, app.FormID)
		if err != nil {
			return err
		}
		opts, err := modelOptions()
		if err != nil {
			return err
		}

		w := wizard.New(f, st,
			wizard.WithLogger(logger),
			wizard.WithEnvironment(cfg.Environment),
			wizard.WithModelOptions(opts...),
			wizard.WithRunner(preflight.NewRunner(
				preflight.WithTimeout(cfg.Verification.Timeout),
				preflight.WithLogger(logger),
			)),
			wizard.WithUploads(upload.NewFSStorage(filepath.Clean(cfg.Storage.UploadDir)), afero.NewOsFs()),
		)
		model, err := w.Run(ctx, app.ID)
		if errors.Is(err, wizard.ErrAborted) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved. Resume with: formflow wizard --resume %s\n", app.ID)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Application %s is ready to submit (%s)\n", app.ID, model.Progress().All)
		return nil
	},
}

func init() {
	wizardCmd.Flags().String("resume", "", "id of an application to resume")
	rootCmd.AddCommand(wizardCmd)
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid application id %q: %w", raw, err)
	}
	return id, nil
}
