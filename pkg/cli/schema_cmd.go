package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"labintel/internal/compose"
	"labintel/internal/domain"
)

func newSchemaCmd(client *Client, output *string) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show the queryable lab schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tables, err := client.Schema(cmd.Context())
			if err != nil {
				return err
			}

			if *output == "json" {
				return printJSON(cmd.OutOrStdout(), tables)
			}

			for i, t := range tables {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", t.Table)
				render := &domain.AnswerTable{Columns: []string{"column", "type", "nullable"}}
				for _, c := range t.Columns {
					render.Rows = append(render.Rows, []string{c.Name, c.Type, fmt.Sprintf("%t", c.Nullable)})
				}
				fmt.Fprint(cmd.OutOrStdout(), compose.RenderText(render))
			}
			return nil
		},
	}
}
