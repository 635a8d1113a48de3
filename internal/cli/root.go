package cli

import (
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/config"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	docsPath string
	verbose  bool
}

// NewRootCmd builds the corpusctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "corpusctl",
		Short: "Build and inspect the team activity corpus",
		Long: `corpusctl runs the corpus loader once, searches the indexed documents and
manages per-member reinforcement notes without starting the API server.

Configuration comes from .env and the environment, the same as the server.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				logger.SetLevel(logger.LevelDebug)
			}
			if opts.docsPath == "" {
				opts.docsPath = config.DocumentsPath()
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.docsPath, "docs", "", "Team documents root (default: DOCUMENTS_PATH or ../public)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newLoadCmd(opts))
	root.AddCommand(newSearchCmd())
	root.AddCommand(newReinforcementsCmd(opts))

	return root
}
