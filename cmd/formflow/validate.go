package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/forms/grant"
	"github.com/goliatone/go-formflow/pkg/preflight/bankcheck"
)

type violation struct {
	file     string
	location string
	message  string
	warning  bool
}

var validateCmd = &cobra.Command{
	Use:   "validate [paths...]",
	Short: "Check form definition documents",
	Long: `Validate loads each definition document (or every document under a
directory), checks it against the meta-schema and the structural rules, and
lints it. Without paths it checks the configured definitions directory and the
compiled-in forms. Errors always fail; warnings fail only with --strict.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")

		paths := args
		if len(paths) == 0 && cfg.Forms.DefinitionsDir != "" {
			paths = []string{cfg.Forms.DefinitionsDir}
		}

		var violations []violation
		if len(args) == 0 {
			violations = append(violations, lintDefinition("builtin:"+grant.ID, grant.Definition())...)
		}
		for _, path := range paths {
			found, err := validatePath(path)
			if err != nil {
				return fmt.Errorf("validate %s: %w", path, err)
			}
			violations = append(violations, found...)
		}

		failed := report(cmd.ErrOrStderr(), violations, strict)
		if failed {
			return errors.New("definition problems found")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().Bool("strict", false, "treat lint warnings as errors")
	rootCmd.AddCommand(validateCmd)
}

func validatePath(path string) ([]violation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return validateFile(path)
	}

	var out []violation
	err = filepath.WalkDir(path, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".json", ".yaml", ".yml":
		default:
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		found, err := validateFile(p)
		out = append(out, found...)
		return err
	})
	return out, err
}

// validateFile reports load failures as violations so one broken document
// does not hide the problems of the others.
func validateFile(path string) ([]violation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	// Any checker will do: only the name has to resolve.
	f, err := form.Load(data, path, form.WithChecker(grant.BankCheckName, bankcheck.New("")))
	if err != nil {
		var defErr *form.DefinitionError
		if errors.As(err, &defErr) {
			out := make([]violation, 0, len(defErr.Problems))
			for _, problem := range defErr.Problems {
				out = append(out, violation{file: path, location: problem.Path, message: problem.Message})
			}
			return out, nil
		}
		return []violation{{file: path, message: err.Error()}}, nil
	}
	return warningsFor(path, f.Lint()), nil
}

func lintDefinition(source string, def form.Definition) []violation {
	if err := form.ValidateDefinition(def); err != nil {
		var defErr *form.DefinitionError
		if errors.As(err, &defErr) {
			out := make([]violation, 0, len(defErr.Problems))
			for _, problem := range defErr.Problems {
				out = append(out, violation{file: source, location: problem.Path, message: problem.Message})
			}
			return out
		}
		return []violation{{file: source, message: err.Error()}}
	}
	return warningsFor(source, form.Lint(def))
}

func warningsFor(source string, warnings []form.Warning) []violation {
	out := make([]violation, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, violation{file: source, location: "fields." + w.Field, message: w.Message, warning: true})
	}
	return out
}

// report prints violations sorted by file, location and message and says
// whether any of them fails the run.
func report(w io.Writer, violations []violation, strict bool) bool {
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].location == violations[j].location {
				return violations[i].message < violations[j].message
			}
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})

	failed := false
	for _, v := range violations {
		level := "error"
		if v.warning {
			level = "warning"
		}
		if !v.warning || strict {
			failed = true
		}
		location := v.location
		if location == "" {
			location = "-"
		}
		fmt.Fprintf(w, "%s: %s: %s -> %s\n", level, v.file, location, v.message)
	}
	return failed
}
