package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rsned/crafting-macro-server/internal/crafting/sync"
)

func newSkillsCmd(a *app) *cobra.Command {
	var level int

	cmd := &cobra.Command{
		Use:   "skills",
		Short: "List the skills unlocked at a crafting level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, closeEngine, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeEngine()

			skills, err := eng.AvailableSkills(ctx, level)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tVARIANT\tCATEGORY\tCP\tDURABILITY\tWAIT\tLEVEL")
			for _, s := range skills {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
					s.Name, s.Variant, s.Category, s.CPCost, s.DurabilityCost, s.WaitSeconds, s.UnlockLevel)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&level, "level", 0, "Crafting level (0 lists every skill)")
	return cmd
}

func newImportSkillsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import-skills <file>",
		Short: "Replace the skill registry with skills from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			database, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			a.logger.Info("importing skills", "file", args[0])
			n, err := sync.NewSyncer(database).ImportSkillsFromFile(ctx, args[0])
			if err != nil {
				return fmt.Errorf("importing skills: %w", err)
			}
			a.logger.Info("skills imported successfully", "count", n)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d skills\n", n)
			return nil
		},
	}
}

func newResetSkillsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-skills",
		Short: "Restore the built-in skill registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			database, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := sync.NewSyncer(database).ResetSkills(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "restored built-in skills")
			return nil
		},
	}
}
