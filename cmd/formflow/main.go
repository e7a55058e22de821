// Package main is the formflow CLI: it validates definition documents,
// exports answer schemas, walks applications through the terminal wizard and
// submits them.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/formmodel"
	"github.com/goliatone/go-formflow/pkg/forms/grant"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/preflight/bankcheck"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	settings *viper.Viper
	cfg      config.Config
	logger   = log.New(os.Stderr, "formflow: ", 0)
)

var rootCmd = &cobra.Command{
	Use:     "formflow",
	Short:   "Adaptive multi-step application forms",
	Version: version,
	Long: `formflow serves multi-step application forms whose steps, questions and
validation follow the answers given so far.

Definition documents are checked with "validate", their answer schema is
exported with "schema", applications are filled in on the terminal with
"wizard", inspected with "progress" and "list", and sent on with "submit".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		settings = config.New(path)
		for key, flag := range map[string]string{
			"locale":                "locale",
			"forms.definitions_dir": "definitions",
			"forms.copy_dir":        "copy",
			"database.dsn":          "dsn",
		} {
			if f := cmd.Flags().Lookup(flag); f != nil {
				if err := settings.BindPFlag(key, f); err != nil {
					return err
				}
			}
		}
		if err := config.Read(settings); err != nil {
			return err
		}
		if used := settings.ConfigFileUsed(); used != "" {
			logger.Printf("using config file %s", used)
		}
		decoded, err := config.Decode(settings)
		if err != nil {
			return err
		}
		cfg = decoded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./formflow.yaml or ~/.config/formflow/formflow.yaml)")
	rootCmd.PersistentFlags().String("locale", "", "copy locale: en or cy")
	rootCmd.PersistentFlags().String("definitions", "", "directory of form definition documents")
	rootCmd.PersistentFlags().String("copy", "", "directory of <locale>.yaml copy catalogs")
	rootCmd.PersistentFlags().String("dsn", "", "application store DSN")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadForms builds the registry from the compiled-in forms plus the
// configured definitions directory. The bank check is attached only when a
// verification URL is configured.
func loadForms() (*form.Registry, error) {
	var opts []formflow.Option
	if dir := cfg.Forms.DefinitionsDir; dir != "" {
		opts = append(opts, formflow.WithDefinitions(os.DirFS(dir)))
	}
	if cfg.Verification.URL != "" {
		opts = append(opts, formflow.WithChecker(grant.BankCheckName, bankcheck.New(cfg.Verification.URL,
			bankcheck.WithMaxRetries(cfg.Verification.MaxRetries),
		)))
	}
	return formflow.LoadForms(opts...)
}

func lookupForm(reg *form.Registry, id string) (*form.Form, error) {
	f, ok := reg.Get(id)
	if !ok {
		return nil, fmt.Errorf("unknown form %q (known: %v)", id, reg.IDs())
	}
	return f, nil
}

// modelOptions wires the copy catalog and link prefix into every model.
func modelOptions() ([]formmodel.Option, error) {
	opts := []formmodel.Option{formmodel.WithBaseURL(cfg.BaseURL)}
	if dir := cfg.Forms.CopyDir; dir != "" {
		catalog, err := i18n.LoadFS(os.DirFS(dir))
		if err != nil {
			return nil, err
		}
		opts = append(opts, formmodel.WithTranslator(catalog))
	}
	return opts, nil
}

func openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// buildModel loads an application and computes its model.
func buildModel(ctx context.Context, st *store.Store, reg *form.Registry, id string) (store.Application, *formmodel.Model, error) {
	appID, err := parseID(id)
	if err != nil {
		return store.Application{}, nil, err
	}
	app, err := st.Load(ctx, appID)
	if err != nil {
		return store.Application{}, nil, err
	}
	f, err := lookupForm(reg, app.FormID)
	if err != nil {
		return store.Application{}, nil, err
	}
	opts, err := modelOptions()
	if err != nil {
		return store.Application{}, nil, err
	}
	model := formflow.Build(f, app.Locale, app.Set(), formflow.Context{
		ApplicationID: app.ID,
		Environment:   cfg.Environment,
		StartedAt:     app.StartedAt,
	}, opts...)
	return app, model, nil
}
