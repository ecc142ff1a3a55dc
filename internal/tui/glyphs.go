package tui

const (
	// vs15 (U+FE0E) forces the preceding character to be monochrome text style.
	vs15 = "︎"

	// checkSelected (▣) - White Square Containing Black Small Square (U+25A3)
	checkSelected = "▣"
	// checkUnselected (□) - White Square (U+25A1)
	checkUnselected = "□"

	// Step outcome marks.
	glyphDone    = "✓"
	glyphFailed  = "✗"
	glyphRetry   = "↻"
	glyphPending = "·"
)
