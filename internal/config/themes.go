package config

import (
	"os"
	"regexp"
	"strings"
)

const themeCSSPath = "static/css/input.css"

// ThemeConfig holds the DaisyUI light and dark theme names applied to every page.
type ThemeConfig struct {
	Light string
	Dark  string
}

var themesRe = regexp.MustCompile(`themes:\s*([a-zA-Z0-9-]+)\s+--default\s*,\s*([a-zA-Z0-9-]+)\s+--prefersdark`)

// GetThemes resolves the dashboard themes. THEME_LIGHT and THEME_DARK win; otherwise
// the DaisyUI plugin line in static/css/input.css is used, then night/dim.
func GetThemes() ThemeConfig {
	themes := ThemeConfig{Light: "night", Dark: "dim"}

	if content, err := os.ReadFile(themeCSSPath); err == nil {
		if parsed, ok := parseThemesFromCSS(string(content)); ok {
			themes = parsed
		}
	}

	themes.Light = getEnv("THEME_LIGHT", themes.Light)
	themes.Dark = getEnv("THEME_DARK", themes.Dark)
	return themes
}

// parseThemesFromCSS expects: themes: <light> --default, <dark> --prefersdark;
func parseThemesFromCSS(content string) (ThemeConfig, bool) {
	matches := themesRe.FindStringSubmatch(content)
	if len(matches) != 3 {
		return ThemeConfig{}, false
	}
	return ThemeConfig{
		Light: strings.TrimSpace(matches[1]),
		Dark:  strings.TrimSpace(matches[2]),
	}, true
}
