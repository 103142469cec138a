package building

// Status colors are fixed lookup tables, not computed. Unknown or missing
// statuses fall into the available/default styling, never an unstyled state.

var dotColors = map[string]string{
	StatusAvailable: "#009E08",
	StatusSold:      "#E05B5B",
	StatusReserved:  "#FFA251",
}

var lightBackgrounds = map[string]string{
	StatusAvailable: "#007A0040",
	StatusSold:      "#fca5a5",
	StatusReserved:  "#fcd34d",
}

var darkBackgrounds = map[string]string{
	StatusAvailable: "rgba(51, 144, 236, 0.22)",
	StatusSold:      "rgba(224, 91, 91, 0.25)",
	StatusReserved:  "rgba(255, 162, 81, 0.28)",
}

const (
	defaultDot     = "#009E08"
	defaultLightBg = "#007A0040"
	defaultDarkBg  = "rgba(51, 144, 236, 0.18)"
)

// DotColor returns the status indicator color.
func DotColor(status string) string {
	if c, ok := dotColors[status]; ok {
		return c
	}
	return defaultDot
}

// BackgroundColor returns the cell background for a status in the given
// color scheme.
func BackgroundColor(status string, darkMode bool) string {
	if darkMode {
		if c, ok := darkBackgrounds[status]; ok {
			return c
		}
		return defaultDarkBg
	}
	if c, ok := lightBackgrounds[status]; ok {
		return c
	}
	return defaultLightBg
}
