package exporter

import (
	"strconv"
	"strings"
)

// latexEscaper rewrites characters with special meaning in LaTeX. The
// backslash mapping must go through the replacer together with the brace
// mappings so replaced text is never rescanned.
var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`%`, `\%`,
	`_`, `\_`,
	`^`, `\^{}`,
	`~`, `\textasciitilde{}`,
)

// escapeLaTeX escapes user-sourced text for safe inclusion in the document.
func escapeLaTeX(s string) string {
	return latexEscaper.Replace(s)
}

// formatFloat formats a value with a fixed number of decimal places.
func formatFloat(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// formatOptional formats an optional value; a nil value renders as the empty
// string so the report never implies a recorded zero.
func formatOptional(v *float64, precision int) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v, precision)
}

// formatCount formats an integer count.
func formatCount(n int) string {
	return strconv.Itoa(n)
}

// formatCoordinate formats a chart coordinate value with enough precision
// for pgfplots while avoiding trailing noise.
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
