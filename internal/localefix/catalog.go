package localefix

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// ErrNoLocale is returned by a Catalog that has never resolved a locale.
var ErrNoLocale = errors.New("cannot format a message without first setting the initial locale")

// Message keys known to the catalog.
const (
	MsgTitle        = "title"
	MsgDescription  = "description"
	MsgInputLabel   = "input.label"
	MsgPlaceholder  = "input.placeholder"
	MsgInputDefault = "input.default"
	MsgOutputLabel  = "output.label"
	MsgSubmit       = "submit"
	MsgArticle      = "article"
	MsgReply        = "reply"
	MsgEmpty        = "error.empty"
)

var english = map[string]string{
	MsgTitle:        "i18n Fix Test",
	MsgDescription:  "If you can see this interface working, the i18n issue is fixed!",
	MsgInputLabel:   "Test Input",
	MsgPlaceholder:  "Enter some text to test...",
	MsgInputDefault: "Hello World!",
	MsgOutputLabel:  "Test Output",
	MsgSubmit:       "Submit",
	MsgArticle:      "The UI is working correctly",
	MsgReply:        "Fixed! You entered: %s",
	MsgEmpty:        "Please enter some text.",
}

// localeVars are consulted in gettext's order for message lookup.
var localeVars = []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"}

// Catalog formats UI messages for the locale found in the environment.
// Only English messages exist; any other locale falls back to English.
// A Catalog must be loaded with Reload before use.
type Catalog struct {
	getenv  func(string) string
	builder *catalog.Builder
	matcher language.Matcher

	mu      sync.RWMutex
	tag     language.Tag
	source  string
	printer *message.Printer
}

// NewCatalog returns an unloaded catalog reading variables through getenv
// (normally os.Getenv).
func NewCatalog(getenv func(string) string) *Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range english {
		// Keys and messages are static; SetString only fails on a bad tag.
		_ = b.SetString(language.English, key, msg)
	}
	return &Catalog{
		getenv:  getenv,
		builder: b,
		matcher: language.NewMatcher(b.Languages()),
	}
}

// Reload re-reads the environment and rebinds the catalog to the locale it
// names. It fails when no locale variable is set or none of them parses.
func (c *Catalog) Reload() error {
	var firstErr error
	for _, key := range localeVars {
		raw := c.getenv(key)
		if raw == "" {
			continue
		}
		tag, err := parseLocale(raw)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s=%q: %w", key, raw, err)
			}
			continue
		}
		matched, _, _ := c.matcher.Match(tag)
		c.mu.Lock()
		c.tag = tag
		c.source = key
		c.printer = message.NewPrinter(matched, message.Catalog(c.builder))
		c.mu.Unlock()
		return nil
	}
	if firstErr != nil {
		return firstErr
	}
	return ErrNoLocale
}

// Locale reports the resolved tag and the variable it came from.
func (c *Catalog) Locale() (language.Tag, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tag, c.source
}

// Text formats the message for key.
func (c *Catalog) Text(key string, args ...any) (string, error) {
	c.mu.RLock()
	p := c.printer
	c.mu.RUnlock()
	if p == nil {
		return "", ErrNoLocale
	}
	if _, ok := english[key]; !ok {
		return "", fmt.Errorf("unknown message %q", key)
	}
	return p.Sprintf(key, args...), nil
}

// parseLocale turns POSIX values such as "en_US.UTF-8", "de_DE@euro" or
// the LANGUAGE list "en_US:en" into a BCP 47 tag.
func parseLocale(raw string) (language.Tag, error) {
	s, _, _ := strings.Cut(raw, ":")
	s, _, _ = strings.Cut(s, ".")
	s, _, _ = strings.Cut(s, "@")
	switch s {
	case "":
		return language.Und, fmt.Errorf("empty locale")
	case "C", "POSIX":
		return language.English, nil
	}
	return language.Parse(strings.ReplaceAll(s, "_", "-"))
}
