package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoicedesk/internal/common"
	"invoicedesk/internal/domain/settings"
	"invoicedesk/internal/schema"
)

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key-path>",
		Short: "Print a setting as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			value := e.container.GetConfigurationService().Get(cmd.Context(), args[0])
			return printJSON(cmd.OutOrStdout(), value)
		}),
	}
}

func setCmd() *cobra.Command {
	var asString bool

	cmd := &cobra.Command{
		Use:   "set <key-path> <value>",
		Short: "Write a setting",
		Long: `Write a setting. Keys whose rule expects a string store the value as given.
Other values are parsed as JSON; anything that is not valid JSON is stored as a string.
Use --string to store the value verbatim.`,
		Args: cobra.ExactArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			keyPath, value := args[0], parseValue(args[0], args[1], asString)
			if err := e.container.GetConfigurationService().Set(cmd.Context(), keyPath, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", keyPath)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&asString, "string", false, "store the value as a string without JSON parsing")
	return cmd
}

// parseValue turns a command-line value into a setting value. With --string,
// or for a string-typed key that is not a quoted JSON string, raw is kept as is.
func parseValue(keyPath, raw string, asString bool) any {
	if asString {
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	if rule, ok := schema.RuleFor(keyPath); ok && rule.Type == schema.TypeString {
		if str, ok := v.(string); ok {
			return str
		}
		return raw
	}
	return v
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [section]",
		Short: "Restore a section (default: all) to its defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			section := settings.SectionAll
			if len(args) > 0 {
				section = args[0]
			}
			if err := e.container.GetConfigurationService().Reset(cmd.Context(), section); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", section)
			return nil
		}),
	}
}

func exportCmd() *cobra.Command {
	var raw bool
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the portable configuration (or the full tree with --raw)",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			var data []byte
			var err error
			if raw {
				var tree map[string]any
				if tree, err = e.container.GetConfigurationService().Export(cmd.Context()); err != nil {
					return err
				}
				data, err = json.MarshalIndent(tree, "", "  ")
			} else {
				data, err = e.container.GetConfigurationManager().ExportConfiguration(cmd.Context())
			}
			if err != nil {
				return err
			}

			if output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := common.WriteFileAtomic(output, data, common.DefaultFilePermissions); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "export the full settings tree")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func importCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a configuration file (or a full tree with --raw)",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			if raw {
				var tree map[string]any
				if err := json.Unmarshal(data, &tree); err != nil {
					return fmt.Errorf("%w: %v", settings.ErrInvalidImport, err)
				}
				err = e.container.GetConfigurationService().Import(cmd.Context(), tree)
			} else {
				err = e.container.GetConfigurationManager().ImportConfiguration(cmd.Context(), data)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", args[0])
			return nil
		}),
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "file holds a full settings tree")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Move legacy flat keys into the settings tree",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			report, _ := e.container.GetConfigurationManager().MigrateLegacySettings(cmd.Context())
			return printJSON(cmd.OutOrStdout(), report)
		}),
	}
}

func pathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show where settings are stored",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			backend, err := e.container.GetConfigurationService().Backend(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Data directory: %s\n", e.cfg.DataDir)
			fmt.Fprintf(w, "Database:       %s\n", e.cfg.DatabasePath)
			fmt.Fprintf(w, "Local storage:  %s\n", e.cfg.LocalStoragePath)
			fmt.Fprintf(w, "Config file:    %s\n", e.cfg.ConfigPath)
			fmt.Fprintf(w, "Backend:        %s\n", backend)
			return nil
		}),
	}
}
