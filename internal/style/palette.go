package style

var palette = map[string]map[string]string{
	"slate": {
		"50": "#f8fafc", "100": "#f1f5f9", "200": "#e2e8f0", "300": "#cbd5e1", "400": "#94a3b8",
		"500": "#64748b", "600": "#475569", "700": "#334155", "800": "#1e293b", "900": "#0f172a", "950": "#020617",
	},
	"gray": {
		"50": "#f9fafb", "100": "#f3f4f6", "200": "#e5e7eb", "300": "#d1d5db", "400": "#9ca3af",
		"500": "#6b7280", "600": "#4b5563", "700": "#374151", "800": "#1f2937", "900": "#111827", "950": "#030712",
	},
	"teal": {
		"50": "#f0fdfa", "100": "#ccfbf1", "200": "#99f6e4", "300": "#5eead4", "400": "#2dd4bf",
		"500": "#14b8a6", "600": "#0d9488", "700": "#0f766e", "800": "#115e59", "900": "#134e4a", "950": "#042f2e",
	},
	"red": {
		"50": "#fef2f2", "100": "#fee2e2", "200": "#fecaca", "300": "#fca5a5", "400": "#f87171",
		"500": "#ef4444", "600": "#dc2626", "700": "#b91c1c", "800": "#991b1b", "900": "#7f1d1d", "950": "#450a0a",
	},
}

var namedColors = map[string]string{
	"white":       "#ffffff",
	"black":       "#000000",
	"transparent": "transparent",
}

// Color resolves a palette reference such as "teal-800" or "white".
func Color(name string) (string, bool) {
	if c, ok := namedColors[name]; ok {
		return c, true
	}
	if v, ok := arbitrary(name); ok && isColorLiteral(v) {
		return v, true
	}
	for i := len(name) - 1; i > 0; i-- {
		if name[i] != '-' {
			continue
		}
		shades, ok := palette[name[:i]]
		if !ok {
			return "", false
		}
		c, ok := shades[name[i+1:]]
		return c, ok
	}
	return "", false
}
