package cli

import (
	"fmt"
	"strings"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/config"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/db"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const previewChars = 240

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over the indexed corpus",
		Example: `  corpusctl search "release pipeline"
  corpusctl search -n 10 alice commits`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfiguration()
			if err != nil {
				return err
			}

			database, err := db.NewPostgresDB(cfg.DBURL)
			if err != nil {
				return err
			}
			defer database.Close()

			docs, err := database.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}

			printDocuments(cmd, docs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum results to show")
	return cmd
}

func printDocuments(cmd *cobra.Command, docs []models.Document) {
	out := cmd.OutOrStdout()
	if len(docs) == 0 {
		fmt.Fprintln(out, "No matching documents.")
		return
	}

	header := color.New(color.FgHiYellow)
	for i, d := range docs {
		header.Fprintf(out, "%d. %s", i+1, d.Source())
		if u := d.Username(); u != "" {
			fmt.Fprintf(out, " [%s]", u)
		}
		if t := d.Type(); t != "" {
			fmt.Fprintf(out, " (%s)", t)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "   %s\n\n", preview(d.Content))
	}
}

func preview(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if len(content) <= previewChars {
		return content
	}
	return content[:previewChars] + "..."
}
