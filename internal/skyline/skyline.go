// Package skyline picks an ASCII-art city stage from the player's total
// experience.
package skyline

import (
	"fmt"
	"strings"
)

// Stage is one skyline illustration unlocked at MinXP.
type Stage struct {
	MinXP int
	Label string
	Art   []string
}

// Stages are ordered by ascending MinXP.
var Stages = []Stage{
	{
		MinXP: 0,
		Label: "Empty lot",
		Art: []string{
			"                              ",
			"                              ",
			"                              ",
			"          .---.               ",
			"         (     )              ",
			"          `---'               ",
			"______________________________",
			"~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~",
		},
	},
	{
		MinXP: 1,
		Label: "Campfire town",
		Art: []string{
			"                              ",
			"        _         _           ",
			"       | |  _    | |          ",
			"   _   | | | |   | |   _      ",
			"  | |__| |_| |___| |__| |     ",
			"__|____|_____|___|_____|_____ ",
			"______________________________",
			"~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~",
		},
	},
	{
		MinXP: 25,
		Label: "Small city",
		Art: []string{
			"             _   ___          ",
			"    _       | | |[] |   _     ",
			"   | |  _   | | |   |  | |    ",
			"   | | | |  | |_|   |  | |    ",
			"   | |_| |__|___|___|__| |    ",
			"__|___|_____|___|___|____|___ ",
			"______________________________",
			"~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~",
		},
	},
	{
		MinXP: 60,
		Label: "Growing skyline",
		Art: []string{
			"          ___       ____      ",
			"   __    |[] |  _  |[]  |     ",
			"  |  |   |   | | | |    |  _  ",
			"  |[]| __|   |_| |_| [] | | | ",
			"  |  ||__|___|___|_|____|_| | ",
			"__|__|_____|___|_____|___|_|__",
			"______________________________",
			"~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~",
		},
	},
	{
		MinXP: 110,
		Label: "Busy downtown",
		Art: []string{
			"     ____   ___    _____      ",
			"  __|[]  | |[] |  |[] []| __  ",
			" |  |    | |   |  |     ||  | ",
			" |[]| [] | |[] |__| []  ||[]| ",
			" |  |____|_|___|__|_____| |  |",
			"_|__|_____|___|__|___|___|_|__",
			"______________________________",
			"~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~",
		},
	},
	{
		MinXP: 180,
		Label: "Metropolis",
		Art: []string{
			"  ____  _____  ____  _____    ",
			" |[]  ||[] []||[]  ||[] []|   ",
			" |    ||     ||    ||     |   ",
			" | [] || []  || [] || []  | __",
			" |____||_____| |____||____||[]",
			"_|____|_|____|_|____|_|____|__",
			"______________________________",
			"~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~",
		},
	},
}

// StageIndex returns the highest stage whose threshold totalXP has reached.
func StageIndex(totalXP int) int {
	for i := len(Stages) - 1; i >= 0; i-- {
		if totalXP >= Stages[i].MinXP {
			return i
		}
	}
	return 0
}

// Normalize pads every line to the width of the longest and joins them.
func Normalize(art []string) string {
	width := 0
	for _, line := range art {
		width = max(width, len(line))
	}
	lines := make([]string, len(art))
	for i, line := range art {
		lines[i] = line + strings.Repeat(" ", width-len(line))
	}
	return strings.Join(lines, "\n")
}

// View is a rendered skyline.
type View struct {
	Index   int    `json:"index"`
	Label   string `json:"label"`
	Art     string `json:"art"`
	TotalXP int    `json:"total_xp"`
}

// Caption returns "Stage n - Label".
func (v View) Caption() string {
	return fmt.Sprintf("Stage %d - %s", v.Index, v.Label)
}

// Render picks and formats the stage for totalXP.
func Render(totalXP int) View {
	i := StageIndex(totalXP)
	return View{
		Index:   i,
		Label:   Stages[i].Label,
		Art:     Normalize(Stages[i].Art),
		TotalXP: totalXP,
	}
}
