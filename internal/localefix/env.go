// Package localefix holds the steps that put a process into a known
// English/UTF-8 locale before a locale-sensitive UI is built.
package localefix

import "fmt"

// Var is one environment assignment.
type Var struct {
	Key   string
	Value string
}

// Vars is applied in order on every platform.
var Vars = []Var{
	{"LANG", "en_US.UTF-8"},
	{"LC_ALL", "en_US.UTF-8"},
	{"LC_CTYPE", "en_US.UTF-8"},
	{"LC_MESSAGES", "en_US.UTF-8"},
	{"LANGUAGE", "en_US:en"},
	{"GRADIO_LANGUAGE", "en"},
	{"GRADIO_LOCALE", "en_US"},
}

// WindowsVars is applied after Vars when running on Windows.
var WindowsVars = []Var{
	{"PYTHONIOENCODING", "utf-8"},
}

// Apply writes the locale table through setenv (normally os.Setenv) and
// returns the assignments made. goos selects the platform extras.
func Apply(goos string, setenv func(key, value string) error) ([]Var, error) {
	vars := Vars
	if goos == "windows" {
		vars = append(append([]Var(nil), Vars...), WindowsVars...)
	}
	for i, v := range vars {
		if err := setenv(v.Key, v.Value); err != nil {
			return vars[:i], fmt.Errorf("set %s: %w", v.Key, err)
		}
	}
	return vars, nil
}
