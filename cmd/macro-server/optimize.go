package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rsned/crafting-macro-server/pkg/crafting"
)

func newOptimizeCmd(a *app) *cobra.Command {
	var (
		req           crafting.MacroRequest
		skills        string
		progressFirst bool
		allowBreak    bool
		timeLimit     time.Duration
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Generate a macro for a recipe",
		Example: `  macro-server optimize --level 20 --cp 300 --progress 600 --quality 2000
  macro-server optimize --level 90 --cp 500 --progress 1200 --quality 4000 --strategy memo --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			req.AvailableSkills = splitList(skills)
			quality := !progressFirst
			durability := !allowBreak
			req.QualityFocus = &quality
			req.DurabilityConstraint = &durability
			req.TimeLimitMs = int(timeLimit.Milliseconds())

			eng, closeEngine, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeEngine()

			resp, err := eng.GenerateMacro(ctx, req)
			if err != nil {
				return err
			}

			if asJSON {
				return writeIndented(cmd.OutOrStdout(), resp)
			}
			printMacro(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&req.PlayerStatus.CraftingLevel, "level", 1, "Crafting level")
	f.IntVar(&req.PlayerStatus.CP, "cp", 180, "Crafting points")
	f.IntVar(&req.Recipe.RequiredProgress, "progress", 0, "Progress required to finish the recipe")
	f.IntVar(&req.Recipe.MaxQuality, "quality", 0, "Maximum quality of the recipe")
	f.IntVar(&req.Recipe.BaseDurability, "durability", 0, "Recipe durability (0 means 70)")
	f.StringVar(&req.Recipe.Name, "name", "", "Recipe name recorded in the run history")
	f.StringVar(&skills, "skills", "", "Comma-separated skill names to restrict the search to")
	f.StringVar(&req.Strategy, "strategy", "", "Search strategy: best-first, beam or memo")
	f.BoolVar(&progressFirst, "progress-first", false, "Finish in the fewest steps instead of maximizing quality")
	f.BoolVar(&allowBreak, "allow-break", false, "Allow paths that run durability down to zero")
	f.DurationVar(&timeLimit, "time-limit", 0, "Search time limit (default from config)")
	f.BoolVar(&asJSON, "json", false, "Print the full response as JSON")
	_ = cmd.MarkFlagRequired("progress")

	return cmd
}

func printMacro(w io.Writer, resp *crafting.MacroResponse) {
	for i, block := range resp.MacroText {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, block)
	}
	if len(resp.MacroText) > 0 {
		fmt.Fprintln(w)
	}

	status := "incomplete"
	if resp.ProgressComplete {
		status = "complete"
	}
	fmt.Fprintf(w, "%s: %d actions, progress %d, quality %d (%d%%), CP used %d, durability left %d\n",
		status, len(resp.ActionSequence), resp.FinalProgress, resp.FinalQuality,
		resp.QualityPercentage, resp.TotalCPUsed, resp.DurabilityRemaining)
	fmt.Fprintf(w, "%s search explored %s states in %s (%s)\n",
		resp.Strategy, humanize.Comma(int64(resp.ExploredStates)),
		time.Duration(resp.CalculationTimeMs)*time.Millisecond, resp.StopReason)
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
