package potkit

import (
	"io"
	"strings"

	"github.com/fatih/color"
)

// Banner displays the potkit ASCII art logo
func Banner(w io.Writer) {
	blue := color.RGB(58, 110, 165)
	grey := color.New(color.FgHiBlack)

	blue.Fprint(w, strings.TrimLeft(`
 ___  ___ _____ _  _ ___ _____
| _ \/ _ \_   _| |/ /|_ _|_   _|
|  _/ (_) || | | ' <  | |  | |
|_|  \___/ |_| |_|\_\|___| |_|
`, "\n"))
	grey.Fprint(w, `
Potkit - Companion tooling for machine-learning interatomic potentials.

`)
}
