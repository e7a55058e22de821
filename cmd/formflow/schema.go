package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/openapi"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <form-id>",
	Short: "Export the answer schema of a form as OpenAPI 3",
	Long: `Schema prints an OpenAPI 3 document describing the answers a form
accepts. Conditional rules are resolved against --answers (a JSON answer set),
or against an empty answer set when none is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadForms()
		if err != nil {
			return err
		}
		f, err := lookupForm(reg, args[0])
		if err != nil {
			return err
		}

		data := answers.Set{}
		if path, _ := cmd.Flags().GetString("answers"); path != "" {
			if data, err = readAnswers(path); err != nil {
				return err
			}
		}
		apiVersion, _ := cmd.Flags().GetString("api-version")

		doc, err := formflow.ExportOpenAPI(cmd.Context(), f, data,
			openapi.WithAPIVersion(apiVersion),
			openapi.WithLocalizer(i18n.New(cfg.Locale)),
		)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}

		if output, _ := cmd.Flags().GetString("output"); output != "" {
			if err := os.WriteFile(output, append(out, '\n'), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Schema written to %s\n", output)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	schemaCmd.Flags().String("answers", "", "JSON answer set the conditional rules are resolved against")
	schemaCmd.Flags().String("output", "", "output file (stdout if empty)")
	schemaCmd.Flags().String("api-version", "", "info.version of the exported document")
	rootCmd.AddCommand(schemaCmd)
}

func readAnswers(path string) (answers.Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	data := answers.Set{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode answers %s: %w", path, err)
	}
	return data, nil
}
