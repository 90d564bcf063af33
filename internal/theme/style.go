package theme

import "github.com/pterm/pterm"

// Palette is the set of pterm styles used for command output.
type Palette struct {
	Accent  *pterm.Style
	Muted   *pterm.Style
	Success *pterm.Style
	Warning *pterm.Style
}

// PaletteFor returns the output styles for t.
func PaletteFor(t Theme) Palette {
	if t == Dark {
		return Palette{
			Accent:  pterm.NewStyle(pterm.FgLightCyan, pterm.Bold),
			Muted:   pterm.NewStyle(pterm.FgGray),
			Success: pterm.NewStyle(pterm.FgLightGreen),
			Warning: pterm.NewStyle(pterm.FgLightYellow),
		}
	}
	return Palette{
		Accent:  pterm.NewStyle(pterm.FgBlue, pterm.Bold),
		Muted:   pterm.NewStyle(pterm.FgDarkGray),
		Success: pterm.NewStyle(pterm.FgGreen),
		Warning: pterm.NewStyle(pterm.FgYellow),
	}
}
