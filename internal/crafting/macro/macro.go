// Package macro renders action sequences as in-game macro text and reads
// action names back out of pasted macros.
package macro

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
)

// ActionsPerBlock is how many actions fit in one macro; the last line of
// each block is the completion echo.
const ActionsPerBlock = 14

// Format splits actions into macro blocks. Each action becomes
// `/ac "Name" <wait.N>` and each block ends with an echo that plays a
// sound and says which block just finished.
func Format(actions []sim.Action) []string {
	if len(actions) == 0 {
		return nil
	}

	total := (len(actions) + ActionsPerBlock - 1) / ActionsPerBlock
	blocks := make([]string, 0, total)
	for i := 0; i < total; i++ {
		start := i * ActionsPerBlock
		end := min(start+ActionsPerBlock, len(actions))

		var sb strings.Builder
		for _, a := range actions[start:end] {
			fmt.Fprintf(&sb, "/ac \"%s\" <wait.%d>\n", a.Name, a.WaitSeconds)
		}
		fmt.Fprintf(&sb, "/echo ### macro fin (%d/%d) <se.1>", i+1, total)
		blocks = append(blocks, sb.String())
	}
	return blocks
}

var actionLine = regexp.MustCompile(`^\s*/ac\s+"([^"]*)"`)

// Parse returns the action names of every `/ac "Name"` line in text, in
// order. Other lines are ignored.
func Parse(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		m := actionLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		if name := strings.TrimSpace(m[1]); name != "" {
			names = append(names, name)
		}
	}
	return names
}
