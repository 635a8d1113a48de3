package cli

import (
	"fmt"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/reinforcement"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newReinforcementsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reinforcements",
		Aliases: []string{"rf"},
		Short:   "Manage per-member reinforcement notes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <user>",
		Short: "Show a team member's reinforcements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := reinforcement.NewStore(opts.docsPath).Get(args[0])
			if err != nil {
				return err
			}
			printReinforcements(cmd, args[0], file)
			return nil
		},
	})

	var r models.Reinforcement
	add := &cobra.Command{
		Use:   "add <user>",
		Short: "Append a reinforcement for a team member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := reinforcement.NewStore(opts.docsPath).Add(args[0], r)
			if err != nil {
				return err
			}
			added := file.Reinforcements[len(file.Reinforcements)-1]
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Added reinforcement %d for %s\n", added.ID, args[0])
			return nil
		},
	}
	add.Flags().StringVar(&r.Category, "category", "", "Category")
	add.Flags().StringVarP(&r.Description, "description", "d", "", "Description")
	add.Flags().StringVar(&r.Priority, "priority", "medium", "Priority")
	add.Flags().StringVar(&r.Status, "status", "open", "Status")
	add.Flags().StringVar(&r.Notes, "notes", "", "Notes")
	add.MarkFlagRequired("description")
	cmd.AddCommand(add)

	return cmd
}

func printReinforcements(cmd *cobra.Command, username string, file *models.ReinforcementFile) {
	out := cmd.OutOrStdout()
	color.New(color.FgHiCyan, color.Bold).Fprintf(out, "%s (updated %s)\n", username, file.LastUpdated)

	if len(file.Reinforcements) == 0 {
		fmt.Fprintln(out, "  no reinforcements")
		return
	}

	for _, r := range file.Reinforcements {
		fmt.Fprintf(out, "  #%d [%s/%s] %s: %s\n", r.ID, r.Priority, r.Status, r.Category, r.Description)
		if r.Notes != "" {
			fmt.Fprintf(out, "      %s\n", r.Notes)
		}
	}
}
