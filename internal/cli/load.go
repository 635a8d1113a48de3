package cli

import (
	"fmt"
	"strings"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/config"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/db"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/github"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/service"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/splitter"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLoadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Run the corpus loader once and print its report",
		Args:  cobra.NoArgs,
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

			if err := database.Migrate(); err != nil {
				return err
			}

			loader := service.NewCorpusLoader(
				github.NewClient(cfg.GitHubToken, cfg.PersonalGitHubToken, cfg.GitHubOrg),
				splitter.NewTokenSplitter(),
				database,
				service.LoaderConfig{DocumentsPath: opts.docsPath, Users: cfg.Users, CommitDays: cfg.CommitDays},
			)

			report, err := loader.Load(cmd.Context())
			printReport(cmd, report)
			return err
		},
	}
}

func printReport(cmd *cobra.Command, report service.Report) {
	out := cmd.OutOrStdout()
	title := color.New(color.FgHiCyan, color.Bold)
	warn := color.New(color.FgYellow)

	title.Fprintln(out, "Corpus load report")
	fmt.Fprintf(out, "  Duration:           %s\n", report.Duration)
	fmt.Fprintf(out, "  Team files:         %d (%d chunks)\n", report.TeamFiles, report.TeamChunks)
	fmt.Fprintf(out, "  Activity documents: %d (%d chunks)\n", report.ActivityDocuments, report.ActivityChunks)
	fmt.Fprintf(out, "  Loaded users:       %s\n", joinOrNone(report.LoadedUsers))
	if len(report.FailedUsers) > 0 {
		warn.Fprintf(out, "  Failed users:       %s\n", strings.Join(report.FailedUsers, ", "))
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
