// Package style resolves utility class strings (tailwind conventions) into
// merged class lists and style objects shared by the markup and PDF targets.
package style

import (
	"regexp"
	"strings"
)

var (
	paddingPattern = regexp.MustCompile(`^p([xytrbl]?)-(.+)$`)
	marginPattern  = regexp.MustCompile(`^-?m([xytrbl]?)-(.+)$`)
	gapPattern     = regexp.MustCompile(`^gap(-[xy])?-(.+)$`)
)

// axisConflicts lists the groups a shorthand spacing group overrides.
var axisConflicts = map[string][]string{
	"":  {"x", "y", "t", "r", "b", "l"},
	"x": {"r", "l"},
	"y": {"t", "b"},
}

var fontWeights = map[string]string{
	"thin":       "100",
	"extralight": "200",
	"light":      "300",
	"normal":     "400",
	"medium":     "500",
	"semibold":   "600",
	"bold":       "700",
	"extrabold":  "800",
	"black":      "900",
}

var fontSizesRem = map[string]float64{
	"xs":   0.75,
	"sm":   0.875,
	"base": 1,
	"lg":   1.125,
	"xl":   1.25,
	"2xl":  1.5,
	"3xl":  1.875,
	"4xl":  2.25,
	"5xl":  3,
	"6xl":  3.75,
}

var textAligns = map[string]bool{"left": true, "center": true, "right": true, "justify": true}

var displays = map[string]string{
	"block":        "block",
	"inline-block": "inline-block",
	"inline":       "inline",
	"flex":         "flex",
	"inline-flex":  "inline-flex",
	"grid":         "grid",
	"hidden":       "none",
}

var positions = map[string]bool{"static": true, "fixed": true, "absolute": true, "relative": true, "sticky": true}

// Merge concatenates class strings and resolves conflicting utilities so
// that, per property group, only the last class survives. Order of the
// surviving classes is preserved.
func Merge(classes ...string) string {
	var tokens []string
	for _, c := range classes {
		tokens = append(tokens, strings.Fields(c)...)
	}

	claimed := make(map[string]bool, len(tokens))
	kept := make([]string, 0, len(tokens))
	for i := len(tokens) - 1; i >= 0; i-- {
		token := tokens[i]
		variant, base := splitVariant(token)
		group, conflicts := classify(base)

		if claimed[variant+group] {
			continue
		}
		claimed[variant+group] = true
		for _, c := range conflicts {
			claimed[variant+c] = true
		}
		kept = append(kept, token)
	}

	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, " ")
}

// splitVariant separates "md:hover:" style prefixes from the utility.
func splitVariant(token string) (variant, base string) {
	token = strings.TrimPrefix(token, "!")
	idx := strings.LastIndex(token, ":")
	if idx < 0 {
		return "", token
	}
	return token[:idx+1], token[idx+1:]
}

// classify returns the conflict group of a utility and the groups it
// additionally overrides. Unknown utilities are their own group.
func classify(base string) (string, []string) {
	if m := paddingPattern.FindStringSubmatch(base); m != nil {
		return "p" + m[1], prefixed("p", axisConflicts[m[1]])
	}
	if m := marginPattern.FindStringSubmatch(base); m != nil {
		return "m" + m[1], prefixed("m", axisConflicts[m[1]])
	}
	if m := gapPattern.FindStringSubmatch(base); m != nil {
		if m[1] == "" {
			return "gap", []string{"gap-x", "gap-y"}
		}
		return "gap" + m[1], nil
	}

	switch {
	case strings.HasPrefix(base, "min-w-"):
		return "min-w", nil
	case strings.HasPrefix(base, "max-w-"):
		return "max-w", nil
	case strings.HasPrefix(base, "min-h-"):
		return "min-h", nil
	case strings.HasPrefix(base, "max-h-"):
		return "max-h", nil
	case strings.HasPrefix(base, "w-"):
		return "w", nil
	case strings.HasPrefix(base, "h-"):
		return "h", nil
	case strings.HasPrefix(base, "text-"):
		return textGroup(strings.TrimPrefix(base, "text-")), nil
	case strings.HasPrefix(base, "font-"):
		if _, ok := fontWeights[strings.TrimPrefix(base, "font-")]; ok {
			return "font-weight", nil
		}
		return "font-family", nil
	case strings.HasPrefix(base, "bg-"):
		return "bg-color", nil
	case strings.HasPrefix(base, "leading-"):
		return "line-height", nil
	case strings.HasPrefix(base, "tracking-"):
		return "letter-spacing", nil
	case strings.HasPrefix(base, "items-"):
		return "align-items", nil
	case strings.HasPrefix(base, "justify-"):
		return "justify-content", nil
	case strings.HasPrefix(base, "opacity-"):
		return "opacity", nil
	case base == "shadow" || strings.HasPrefix(base, "shadow-"):
		return "shadow", nil
	case base == "rounded" || strings.HasPrefix(base, "rounded-"):
		return "rounded", nil
	case base == "border" || isBorderWidth(base):
		return "border-w", nil
	case strings.HasPrefix(base, "border-"):
		return "border-color", nil
	}

	for _, side := range []string{"top", "right", "bottom", "left"} {
		if strings.HasPrefix(base, side+"-") || strings.HasPrefix(base, "-"+side+"-") {
			return side, nil
		}
	}

	switch base {
	case "flex-row", "flex-col", "flex-row-reverse", "flex-col-reverse":
		return "flex-direction", nil
	case "flex-wrap", "flex-nowrap", "flex-wrap-reverse":
		return "flex-wrap", nil
	case "flex-1", "flex-auto", "flex-initial", "flex-none":
		return "flex", nil
	case "underline", "no-underline", "line-through", "overline":
		return "text-decoration", nil
	case "italic", "not-italic":
		return "font-style", nil
	case "uppercase", "lowercase", "capitalize", "normal-case":
		return "text-transform", nil
	}
	if _, ok := displays[base]; ok {
		return "display", nil
	}
	if positions[base] {
		return "position", nil
	}

	return base, nil
}

func textGroup(value string) string {
	if _, ok := fontSizesRem[value]; ok {
		return "font-size"
	}
	if textAligns[value] {
		return "text-align"
	}
	if v, ok := arbitrary(value); ok && !isColorLiteral(v) {
		return "font-size"
	}
	return "text-color"
}

func isBorderWidth(base string) bool {
	rest, ok := strings.CutPrefix(base, "border-")
	if !ok {
		return false
	}
	if rest == "0" || rest == "2" || rest == "4" || rest == "8" {
		return true
	}
	if v, ok := arbitrary(rest); ok && !isColorLiteral(v) {
		return true
	}
	return false
}

func prefixed(prefix string, axes []string) []string {
	out := make([]string, len(axes))
	for i, a := range axes {
		out[i] = prefix + a
	}
	return out
}

// arbitrary unwraps "[value]" utilities.
func arbitrary(value string) (string, bool) {
	if len(value) > 2 && strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		return strings.ReplaceAll(value[1:len(value)-1], "_", " "), true
	}
	return "", false
}

func isColorLiteral(v string) bool {
	return strings.HasPrefix(v, "#") || strings.HasPrefix(v, "rgb") || strings.HasPrefix(v, "hsl")
}
