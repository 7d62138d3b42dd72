package domain

// Theme is the UI colour scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Settings holds user preferences persisted alongside the tasks.
type Settings struct {
	Theme Theme `json:"theme"`
}

// DefaultSettings returns the first-run settings.
func DefaultSettings() Settings {
	return Settings{Theme: ThemeLight}
}
