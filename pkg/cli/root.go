// Package cli implements the labintel command-line client.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]interface{}{"error": err.Error()}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				errObj["http_status"] = apiErr.HTTPStatus
				errObj["kind"] = apiErr.Kind
			}
			_ = printJSON(os.Stdout, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		host   string
		output string
	)

	rootCmd := &cobra.Command{
		Use:           "labintel",
		Short:         "Lab intelligence CLI",
		Long:          "Command-line client for asking natural-language questions about lab records.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Precedence: flag > env > default
			if !cmd.Flags().Changed("host") {
				if v := os.Getenv("LABINTEL_HOST"); v != "" {
					host = v
				}
			}
			if !cmd.Flags().Changed("output") {
				if v := os.Getenv("LABINTEL_OUTPUT"); v != "" {
					output = v
				}
			}
			if output != "text" && output != "json" {
				return fmt.Errorf("unsupported output format %q: use 'text' or 'json'", output)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "API host URL")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	// Accept snake_case spellings of multi-word flags.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	client := NewClient(host)
	originalPreRun := rootCmd.PersistentPreRunE
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := originalPreRun(cmd, args); err != nil {
			return err
		}
		client.BaseURL = host
		return nil
	}

	rootCmd.AddCommand(newAskCmd(client, &output))
	rootCmd.AddCommand(newSchemaCmd(client, &output))
	rootCmd.AddCommand(newHistoryCmd(client, &output))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "labintel %s (%s)\n", version, commit)
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
