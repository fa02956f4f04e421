package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rsned/crafting-macro-server/pkg/crafting"
)

func newSimulateCmd(a *app) *cobra.Command {
	var (
		req       crafting.SimulateRequest
		macroFile string
		buffs     string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "simulate [skill...]",
		Short: "Replay a macro and show the state after every step",
		Example: `  macro-server simulate --progress 360 --quality 1000 "Basic Touch" "Basic Synthesis"
  macro-server simulate --progress 360 --quality 1000 --macro-file macro.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			req.Actions = args
			if macroFile != "" {
				data, err := os.ReadFile(macroFile)
				if err != nil {
					return fmt.Errorf("reading macro file: %w", err)
				}
				req.MacroText = string(data)
			}
			req.InitialBuffs = splitList(buffs)

			eng, closeEngine, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeEngine()

			resp, err := eng.SimulateMacro(ctx, req)
			if err != nil {
				return err
			}

			if asJSON {
				return writeIndented(cmd.OutOrStdout(), resp)
			}
			printSimulation(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&req.PlayerStatus.CraftingLevel, "level", 1, "Crafting level")
	f.IntVar(&req.PlayerStatus.CP, "cp", 180, "Crafting points")
	f.IntVar(&req.Recipe.RequiredProgress, "progress", 0, "Progress required to finish the recipe")
	f.IntVar(&req.Recipe.MaxQuality, "quality", 0, "Maximum quality of the recipe")
	f.IntVar(&req.Recipe.BaseDurability, "durability", 0, "Recipe durability (0 means 70)")
	f.StringVar(&macroFile, "macro-file", "", "Read /ac lines from this file instead of arguments")
	f.StringVar(&buffs, "buffs", "", `Comma-separated starting buffs, e.g. "Inner Quiet:3,Veneration:2"`)
	f.BoolVar(&asJSON, "json", false, "Print the full response as JSON")
	_ = cmd.MarkFlagRequired("progress")

	return cmd
}

func printSimulation(w io.Writer, resp *crafting.SimulateResponse) {
	for _, st := range resp.Steps {
		fmt.Fprintf(w, "%3d  %-18s progress %5d  quality %5d  durability %3d  CP %4d",
			st.Step, st.Action, st.Progress, st.Quality, st.Durability, st.CP)
		for _, b := range st.Buffs {
			switch {
			case b.Stacks > 0:
				fmt.Fprintf(w, "  [%s x%d]", b.Name, b.Stacks)
			case b.Duration > 0:
				fmt.Fprintf(w, "  [%s %d]", b.Name, b.Duration)
			default:
				fmt.Fprintf(w, "  [%s]", b.Name)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "halt: %s, progress %d, quality %d (%d%%), CP used %d, durability left %d",
		resp.Halt, resp.FinalProgress, resp.FinalQuality, resp.QualityPercentage,
		resp.TotalCPUsed, resp.DurabilityRemaining)
	if resp.SkippedActions > 0 {
		fmt.Fprintf(w, ", %d actions not run", resp.SkippedActions)
	}
	fmt.Fprintln(w)
	if resp.Error != "" {
		fmt.Fprintln(w, "error:", resp.Error)
	}
}
