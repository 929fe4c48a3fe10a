package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/TFMV/vectorgen/pkg/schema"
)

func newSchemaCommand() *cobra.Command {
	var catalogDir string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the schema catalog",
		Long: `List, show, add, remove, and export schemas. Built-in schemas ship with
the tool; custom schemas live in the user catalog directory.`,
	}
	cmd.PersistentFlags().StringVar(&catalogDir, "catalog-dir", "", "custom schema catalog directory")

	manager := func() (*schema.Manager, error) {
		return schema.NewManager(catalogDir)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := manager()
			if err != nil {
				return err
			}
			entries, err := mgr.List()
			if err != nil {
				return err
			}
			for _, e := range entries {
				kind := "custom "
				if e.Builtin {
					kind = "builtin"
				}
				fmt.Printf("%-12s %s  %2d fields  %s\n", e.ID, kind, e.Fields, e.Description)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a schema as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := manager()
			if err != nil {
				return err
			}
			s, err := mgr.Get(args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <id> <schema-file>",
		Short: "Validate a schema file and add it to the catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := manager()
			if err != nil {
				return err
			}
			if err := mgr.Add(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Added schema %q to %s.\n", args[0], mgr.Dir())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a custom schema from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := manager()
			if err != nil {
				return err
			}
			if err := mgr.Remove(args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed schema %q.\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "save <id> <dest-file>",
		Short: "Export a schema to a file as a starting point",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := manager()
			if err != nil {
				return err
			}
			if err := mgr.Save(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Saved schema %q to %s.\n", args[0], args[1])
			return nil
		},
	})

	// validate is a convenience wrapper over `generate --validate-only`.
	cmd.AddCommand(&cobra.Command{
		Use:   "validate <schema-file>",
		Short: "Validate a schema file and report every issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schema.Load(args[0])
			if err != nil {
				if vErr, ok := asValidationError(err); ok {
					fmt.Println("Schema validation failed:")
					for _, iss := range vErr.Issues {
						fmt.Printf("  %s: %s\n", iss.Path, iss.Reason)
					}
					os.Exit(1)
				}
				return err
			}
			fmt.Printf("Schema %q is valid (%d fields).\n", s.CollectionName, len(s.Fields))
			return nil
		},
	})

	return cmd
}

func asValidationError(err error) (*schema.ValidationError, bool) {
	var vErr *schema.ValidationError
	ok := errors.As(err, &vErr)
	return vErr, ok
}
