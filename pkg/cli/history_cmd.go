package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"labintel/internal/compose"
	"labintel/internal/domain"
)

func newHistoryCmd(client *Client, output *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent questions and their outcomes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := client.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if *output == "json" {
				return printJSON(cmd.OutOrStdout(), entries)
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No questions logged yet.")
				return nil
			}

			render := &domain.AnswerTable{Columns: []string{"id", "asked_at", "status", "rows", "question"}}
			for _, e := range entries {
				status := e.Status
				if e.FailureKind != "" {
					status = e.FailureKind
				}
				render.Rows = append(render.Rows, []string{
					strconv.FormatInt(e.ID, 10), e.CreatedAt, status,
					strconv.Itoa(e.RowCount), e.Question,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), compose.RenderText(render))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")
	return cmd
}
