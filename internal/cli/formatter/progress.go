package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderBudgetBar renders spend against a limit like [████░░░░] 45%.
// The bar is colored by how much is used: green below 80%, yellow up to the
// limit, red when over. A non-positive limit renders a dim placeholder.
func RenderBudgetBar(spent, limit float64, width int) string {
	if width < 2 {
		width = 2
	}
	if limit <= 0 {
		return Dim("[" + strings.Repeat(emptyBlock, width) + "]  n/a")
	}

	pct := spent / limit
	if pct < 0 {
		pct = 0
	}
	shown := pct
	if shown > 1 {
		shown = 1
	}

	filled := int(shown * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct > 1:
		style = StyleRed
	case pct >= 0.8:
		style = StyleYellow
	}

	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}
