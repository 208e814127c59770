package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"

	"github.com/rezkam/todolist/internal/application/todo"
	"github.com/rezkam/todolist/internal/config"
	"github.com/rezkam/todolist/internal/infrastructure/http/openapi"
	"github.com/rezkam/todolist/internal/storage/sqlstore"
)

// loadConfig is replaced in tests.
var loadConfig = config.LoadCLIConfig

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "todoctl",
		Short:         "Administer the todolist database and API description",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMigrateCommand(), newSeedCommand(), newOpenAPICommand())
	return root
}

func openStore(ctx context.Context) (*sqlstore.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	storeCfg, err := cfg.Database.Store()
	if err != nil {
		return nil, err
	}
	return sqlstore.Open(ctx, storeCfg)
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(ctx); err != nil {
				return err
			}
			current, _, err := store.MigrationVersions(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", current)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and embedded schema versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			current, target, err := store.MigrationVersions(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "driver: %s\ncurrent: %d\ntarget: %d\n", store.Driver(), current, target)
			if current < target {
				fmt.Fprintln(cmd.OutOrStdout(), "pending migrations: run todoctl migrate")
			}
			return nil
		},
	})

	return cmd
}

func newSeedCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample lists and items into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if migrate {
				if err := store.Migrate(ctx); err != nil {
					return err
				}
			}

			seeded, err := todo.Seed(ctx, todo.Repositories{
				Lists: sqlstore.Factory(store, sqlstore.ListSchema),
				Items: sqlstore.Factory(store, sqlstore.ItemSchema),
			})
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "seeded sample data")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "database already has lists; nothing to do")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply migrations before seeding")
	return cmd
}

func newOpenAPICommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI description of the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc := openapi.NewDocument()

			var (
				data []byte
				err  error
			)
			switch strings.ToLower(format) {
			case "json":
				data, err = openapi.MarshalJSON(doc)
			case "yaml", "yml":
				data, err = openapi.MarshalYAML(doc)
			default:
				return fmt.Errorf("unsupported format %q: expected json or yaml", format)
			}
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	cmd.AddCommand(&cobra.Command{
		Use:   "validate [file]",
		Short: "Validate the built-in description, or a description file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := openapi.NewDocument()
			source := "built-in document"

			if len(args) == 1 {
				loader := openapi3.NewLoader()
				loaded, err := loader.LoadFromFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to load %s: %w", args[0], err)
				}
				doc, source = loaded, args[0]
			}

			if err := doc.Validate(cmd.Context()); err != nil {
				return fmt.Errorf("%s is invalid: %w", source, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (OpenAPI %s, %d paths)\n", source, doc.OpenAPI, doc.Paths.Len())
			return nil
		},
	})

	return cmd
}
