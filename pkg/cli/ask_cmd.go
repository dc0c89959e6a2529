package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"labintel/internal/compose"
	"labintel/internal/domain"
)

func newAskCmd(client *Client, output *string) *cobra.Command {
	var showTable bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a natural-language question about lab records",
		Example: `  labintel ask "How many abnormal tests were reported yesterday?"
  labintel ask "List patients from Lab 12 this month" --table`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")

			result, err := client.Ask(cmd.Context(), question)
			if err != nil {
				return err
			}

			if *output == "json" {
				return printJSON(cmd.OutOrStdout(), result)
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Answer)
			if showTable && result.Table != nil {
				table := &domain.AnswerTable{Columns: result.Table.Columns, Rows: result.Table.Rows}
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprint(cmd.OutOrStdout(), compose.RenderText(table))
			}
			if result.Truncated {
				fmt.Fprintf(cmd.OutOrStdout(), "\n(result truncated at %d rows)\n", result.RowCount)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showTable, "table", false, "Print the full result table after the answer")
	return cmd
}
