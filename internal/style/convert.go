package style

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// DefaultPtPerRem is the point size of one rem when nothing else is configured.
const DefaultPtPerRem = 12

// Style is a flat style object keyed by camelCase property name. Lengths
// are expressed in pt, percentages or CSS units carried through verbatim.
type Style map[string]string

// CSS renders the style as an inline CSS declaration list with properties
// in a stable order.
func (s Style) CSS() string {
	if len(s) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(kebab(k))
		b.WriteString(": ")
		b.WriteString(s[k])
	}
	return b.String()
}

// Clone returns an independent copy.
func (s Style) Clone() Style {
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Converter maps utility classes to Style objects.
type Converter struct {
	PtPerRem float64
}

// NewConverter returns a converter; a non-positive ptPerRem uses the default.
func NewConverter(ptPerRem float64) *Converter {
	if ptPerRem <= 0 {
		ptPerRem = DefaultPtPerRem
	}
	return &Converter{PtPerRem: ptPerRem}
}

// Convert resolves a class string into a Style. Later classes override
// earlier ones for the same property. Variant-prefixed classes and
// utilities with no style equivalent are ignored.
func (c *Converter) Convert(classes string) Style {
	out := Style{}
	for _, token := range strings.Fields(classes) {
		variant, base := splitVariant(token)
		if variant != "" {
			continue
		}
		c.apply(out, base)
	}
	return out
}

func (c *Converter) apply(out Style, base string) {
	if m := paddingPattern.FindStringSubmatch(base); m != nil {
		if v, ok := c.spacing(m[2], false); ok {
			setSides(out, "padding", m[1], v)
		}
		return
	}
	if m := marginPattern.FindStringSubmatch(base); m != nil {
		if v, ok := c.spacing(m[2], strings.HasPrefix(base, "-")); ok {
			setSides(out, "margin", m[1], v)
		}
		return
	}
	if m := gapPattern.FindStringSubmatch(base); m != nil {
		if v, ok := c.spacing(m[2], false); ok {
			switch m[1] {
			case "-x":
				out["columnGap"] = v
			case "-y":
				out["rowGap"] = v
			default:
				out["gap"] = v
			}
		}
		return
	}

	for _, sized := range []struct{ prefix, prop string }{
		{"min-w-", "minWidth"},
		{"max-w-", "maxWidth"},
		{"min-h-", "minHeight"},
		{"max-h-", "maxHeight"},
		{"w-", "width"},
		{"h-", "height"},
	} {
		if rest, ok := strings.CutPrefix(base, sized.prefix); ok {
			if v, ok := c.size(rest, sized.prop); ok {
				out[sized.prop] = v
			}
			return
		}
	}

	for _, side := range []string{"top", "right", "bottom", "left"} {
		neg := strings.HasPrefix(base, "-"+side+"-")
		if rest, ok := strings.CutPrefix(strings.TrimPrefix(base, "-"), side+"-"); ok {
			if v, ok := c.spacing(rest, neg); ok {
				out[side] = v
			}
			return
		}
	}

	switch {
	case strings.HasPrefix(base, "text-"):
		c.text(out, strings.TrimPrefix(base, "text-"))
		return
	case strings.HasPrefix(base, "font-"):
		rest := strings.TrimPrefix(base, "font-")
		if w, ok := fontWeights[rest]; ok {
			out["fontWeight"] = w
		} else if f, ok := fontFamily(rest); ok {
			out["fontFamily"] = f
		}
		return
	case strings.HasPrefix(base, "bg-"):
		if col, ok := Color(strings.TrimPrefix(base, "bg-")); ok {
			out["backgroundColor"] = col
		}
		return
	case strings.HasPrefix(base, "leading-"):
		if v, ok := lineHeights[strings.TrimPrefix(base, "leading-")]; ok {
			out["lineHeight"] = v
		}
		return
	case strings.HasPrefix(base, "items-"):
		if v, ok := alignments[strings.TrimPrefix(base, "items-")]; ok {
			out["alignItems"] = v
		}
		return
	case strings.HasPrefix(base, "justify-"):
		if v, ok := alignments[strings.TrimPrefix(base, "justify-")]; ok {
			out["justifyContent"] = v
		}
		return
	case strings.HasPrefix(base, "opacity-"):
		if n, err := strconv.Atoi(strings.TrimPrefix(base, "opacity-")); err == nil {
			out["opacity"] = formatNumber(float64(n) / 100)
		}
		return
	case base == "rounded" || strings.HasPrefix(base, "rounded-"):
		if rem, ok := radii[strings.TrimPrefix(strings.TrimPrefix(base, "rounded"), "-")]; ok {
			out["borderRadius"] = rem
		}
		return
	case base == "border":
		out["borderWidth"] = "1px"
		return
	case isBorderWidth(base):
		rest := strings.TrimPrefix(base, "border-")
		if v, ok := arbitrary(rest); ok {
			out["borderWidth"] = v
		} else {
			out["borderWidth"] = rest + "px"
		}
		return
	case strings.HasPrefix(base, "border-"):
		if col, ok := Color(strings.TrimPrefix(base, "border-")); ok {
			out["borderColor"] = col
		}
		return
	}

	switch base {
	case "flex-row":
		out["flexDirection"] = "row"
	case "flex-col":
		out["flexDirection"] = "column"
	case "flex-row-reverse":
		out["flexDirection"] = "row-reverse"
	case "flex-col-reverse":
		out["flexDirection"] = "column-reverse"
	case "flex-wrap":
		out["flexWrap"] = "wrap"
	case "flex-nowrap":
		out["flexWrap"] = "nowrap"
	case "flex-1":
		out["flexGrow"] = "1"
		out["flexShrink"] = "1"
	case "flex-auto":
		out["flexGrow"] = "1"
	case "flex-none":
		out["flexGrow"] = "0"
		out["flexShrink"] = "0"
	case "underline":
		out["textDecoration"] = "underline"
	case "line-through":
		out["textDecoration"] = "line-through"
	case "no-underline":
		out["textDecoration"] = "none"
	case "italic":
		out["fontStyle"] = "italic"
	case "not-italic":
		out["fontStyle"] = "normal"
	case "uppercase", "lowercase", "capitalize":
		out["textTransform"] = base
	case "normal-case":
		out["textTransform"] = "none"
	default:
		if d, ok := displays[base]; ok {
			out["display"] = d
		} else if positions[base] {
			out["position"] = base
		}
	}
}

func (c *Converter) text(out Style, rest string) {
	if rem, ok := fontSizesRem[rest]; ok {
		out["fontSize"] = c.pt(rem)
		return
	}
	if textAligns[rest] {
		out["textAlign"] = rest
		return
	}
	if v, ok := arbitrary(rest); ok && !isColorLiteral(v) {
		out["fontSize"] = v
		return
	}
	if col, ok := Color(rest); ok {
		out["color"] = col
	}
}

// spacing resolves a tailwind spacing scale value (0.25rem per step).
func (c *Converter) spacing(value string, negative bool) (string, bool) {
	sign := ""
	if negative {
		sign = "-"
	}
	switch value {
	case "0":
		return "0", true
	case "px":
		return sign + "1px", true
	case "auto":
		return "auto", true
	case "full":
		return sign + "100%", true
	}
	if v, ok := arbitrary(value); ok {
		return sign + v, true
	}
	if pct, ok := fraction(value); ok {
		return sign + pct, true
	}
	steps, err := strconv.ParseFloat(value, 64)
	if err != nil || steps < 0 {
		return "", false
	}
	return sign + c.pt(steps*0.25), true
}

func (c *Converter) size(value, prop string) (string, bool) {
	switch value {
	case "screen":
		if strings.Contains(strings.ToLower(prop), "width") {
			return "100vw", true
		}
		return "100vh", true
	case "min", "max", "fit":
		return value + "-content", true
	}
	return c.spacing(value, false)
}

func (c *Converter) pt(rem float64) string {
	return formatNumber(rem*c.PtPerRem) + "pt"
}

func setSides(out Style, prop, axis, v string) {
	switch axis {
	case "":
		for _, side := range []string{"Top", "Right", "Bottom", "Left"} {
			out[prop+side] = v
		}
	case "x":
		out[prop+"Left"] = v
		out[prop+"Right"] = v
	case "y":
		out[prop+"Top"] = v
		out[prop+"Bottom"] = v
	case "t":
		out[prop+"Top"] = v
	case "r":
		out[prop+"Right"] = v
	case "b":
		out[prop+"Bottom"] = v
	case "l":
		out[prop+"Left"] = v
	}
}

func fraction(value string) (string, bool) {
	num, den, ok := strings.Cut(value, "/")
	if !ok {
		return "", false
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return "", false
	}
	return formatNumber(n/d*100) + "%", true
}

func fontFamily(name string) (string, bool) {
	switch name {
	case "":
		return "", false
	case "sans":
		return "Helvetica", true
	case "serif":
		return "Times-Roman", true
	case "mono":
		return "Courier", true
	}
	if v, ok := arbitrary(name); ok {
		return v, v != ""
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r), true
}

var lineHeights = map[string]string{
	"none":    "1",
	"tight":   "1.25",
	"snug":    "1.375",
	"normal":  "1.5",
	"relaxed": "1.625",
	"loose":   "2",
}

var alignments = map[string]string{
	"start":    "flex-start",
	"end":      "flex-end",
	"center":   "center",
	"between":  "space-between",
	"around":   "space-around",
	"evenly":   "space-evenly",
	"stretch":  "stretch",
	"baseline": "baseline",
}

var radii = map[string]string{
	"none": "0",
	"sm":   "2px",
	"":     "4px",
	"md":   "6px",
	"lg":   "8px",
	"xl":   "12px",
	"full": "9999px",
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func kebab(prop string) string {
	var b strings.Builder
	for _, r := range prop {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseLength converts a style length to points. Percentages resolve
// against parent; "auto" and unknown units report false.
func ParseLength(v string, parent float64) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" || v == "auto" {
		return 0, false
	}
	if v == "0" {
		return 0, true
	}

	units := []struct {
		suffix string
		factor float64
	}{
		{"pt", 1},
		{"px", 0.75},
		{"mm", 72 / 25.4},
		{"cm", 72 / 2.54},
		{"in", 72},
		{"%", parent / 100},
	}
	for _, u := range units {
		if num, ok := strings.CutSuffix(v, u.suffix); ok {
			f, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return 0, false
			}
			return f * u.factor, true
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String implements fmt.Stringer for debugging output.
func (s Style) String() string {
	return fmt.Sprintf("{%s}", s.CSS())
}
