package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/formmodel"
	"github.com/goliatone/go-formflow/pkg/forms/grant"
)

var progressCmd = &cobra.Command{
	Use:   "progress <application-id>",
	Short: "Show the section progress and open problems of an application",
	Args:  cobra.ExactArgs(1),
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

		_, model, err := buildModel(ctx, st, reg, args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(model.Progress())
		}
		return printProgress(cmd.OutOrStdout(), model)
	},
}

var listCmd = &cobra.Command{
	Use:   "list [form-id]",
	Short: "List stored applications of a form, most recently updated first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		formID := grant.ID
		if len(args) == 1 {
			formID = args[0]
		}
		apps, err := st.List(ctx, formID)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTATUS\tLOCALE\tUPDATED")
		for _, app := range apps {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", app.ID, app.Status, app.Locale, humanize.Time(app.UpdatedAt))
		}
		return tw.Flush()
	},
}

func init() {
	progressCmd.Flags().Bool("json", false, "print the progress as JSON")
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(listCmd)
}

func printProgress(w io.Writer, model *formmodel.Model) error {
	p := model.Progress()
	fmt.Fprintf(w, "%s: %s\n", model.Localizer().Text(model.Form().Title()), p.All)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, section := range p.Sections {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", section.Slug, section.Label, section.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, section := range model.Summary() {
		for _, step := range section.Steps {
			for _, item := range step.Items {
				for _, msg := range item.Messages {
					fmt.Fprintf(w, "  ! %s / %s: %s\n", section.Title, item.Label, msg)
				}
			}
		}
	}
	return nil
}
