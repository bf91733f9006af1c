package localefix_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/petasbytes/sidekick/internal/localefix"
)

func mapEnv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestApply_SetsTableInOrder(t *testing.T) {
	got := map[string]string{}
	var order []string
	applied, err := localefix.Apply("linux", func(k, v string) error {
		got[k] = v
		order = append(order, k)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, applied, 7)
	assert.Equal(t, []string{"LANG", "LC_ALL", "LC_CTYPE", "LC_MESSAGES", "LANGUAGE", "GRADIO_LANGUAGE", "GRADIO_LOCALE"}, order)
	assert.Equal(t, "en_US:en", got["LANGUAGE"])
	assert.NotContains(t, got, "PYTHONIOENCODING")
}

func TestApply_WindowsExtras(t *testing.T) {
	got := map[string]string{}
	applied, err := localefix.Apply("windows", func(k, v string) error { got[k] = v; return nil })
	require.NoError(t, err)
	assert.Len(t, applied, 8)
	assert.Equal(t, "utf-8", got["PYTHONIOENCODING"])
	assert.Len(t, localefix.Vars, 7, "package table is not modified")
}

func TestApply_StopsOnError(t *testing.T) {
	applied, err := localefix.Apply("linux", func(k, v string) error {
		if k == "LC_CTYPE" {
			return errors.New("denied")
		}
		return nil
	})
	assert.ErrorContains(t, err, "set LC_CTYPE: denied")
	assert.Len(t, applied, 2)
}

func TestApply_RealEnvironment(t *testing.T) {
	for _, v := range localefix.Vars {
		t.Setenv(v.Key, "")
	}
	_, err := localefix.Apply(runtime.GOOS, os.Setenv)
	require.NoError(t, err)
	assert.Equal(t, "en_US.UTF-8", os.Getenv("LC_ALL"))
}

func TestCacheDirs(t *testing.T) {
	dirs := localefix.CacheDirs("/home/u", "linux", "ignored")
	assert.Equal(t, []string{
		filepath.Join("/home/u", ".gradio"),
		filepath.Join("/home/u", ".cache", "gradio"),
		filepath.Join("/home/u", ".cache", "huggingface"),
		"/tmp/gradio",
	}, dirs)

	win := localefix.CacheDirs("/home/u", "windows", "/tmpdir")
	assert.Equal(t, filepath.Join("/tmpdir", "gradio"), win[3])
}

func TestCleanCaches(t *testing.T) {
	root := t.TempDir()
	present := filepath.Join(root, "present")
	require.NoError(t, os.MkdirAll(filepath.Join(present, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(present, "nested", "f"), []byte("x"), 0o644))
	missing := filepath.Join(root, "missing")

	var reports []string
	removed := localefix.CleanCaches([]string{missing, "", present}, func(dir string, err error) {
		reports = append(reports, dir)
	})

	assert.Equal(t, []string{present}, removed)
	assert.Empty(t, reports, "missing directories are not failures")
	assert.NoDirExists(t, present)
}

func TestCleanCaches_ContinuesAfterFailure(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("needs POSIX permissions enforced")
	}
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.MkdirAll(filepath.Join(locked, "inner"), 0o755))
	require.NoError(t, os.Chmod(locked, 0o500))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })
	ok := filepath.Join(root, "ok")
	require.NoError(t, os.Mkdir(ok, 0o755))

	var failed []string
	removed := localefix.CleanCaches([]string{locked, ok}, func(dir string, err error) {
		failed = append(failed, dir)
	})
	assert.Equal(t, []string{locked}, failed)
	assert.Equal(t, []string{ok}, removed)
}

func TestCatalog_NotLoaded(t *testing.T) {
	c := localefix.NewCatalog(mapEnv(nil))
	_, err := c.Text(localefix.MsgTitle)
	assert.ErrorIs(t, err, localefix.ErrNoLocale)
	assert.ErrorIs(t, c.Reload(), localefix.ErrNoLocale)
}

func TestCatalog_ReloadPicksUpEnvironment(t *testing.T) {
	env := map[string]string{}
	c := localefix.NewCatalog(mapEnv(env))
	require.Error(t, c.Reload())

	for _, v := range localefix.Vars {
		env[v.Key] = v.Value
	}
	require.NoError(t, c.Reload())

	tag, source := c.Locale()
	assert.Equal(t, "LANGUAGE", source)
	assert.Equal(t, language.MustParse("en-US"), tag)

	label, err := c.Text(localefix.MsgInputLabel)
	require.NoError(t, err)
	assert.Equal(t, "Test Input", label)

	reply, err := c.Text(localefix.MsgReply, "hi")
	require.NoError(t, err)
	assert.Equal(t, "Fixed! You entered: hi", reply)
}

func TestCatalog_Priority(t *testing.T) {
	env := map[string]string{
		"LANG":        "de_DE.UTF-8",
		"LC_MESSAGES": "zh_CN.UTF-8",
		"LC_ALL":      "ja_JP.UTF-8",
		"LANGUAGE":    "fr_FR:fr",
	}
	c := localefix.NewCatalog(mapEnv(env))
	for _, want := range []struct{ source, tag string }{
		{"LANGUAGE", "fr-FR"},
		{"LC_ALL", "ja-JP"},
		{"LC_MESSAGES", "zh-CN"},
		{"LANG", "de-DE"},
	} {
		require.NoError(t, c.Reload())
		tag, source := c.Locale()
		assert.Equal(t, want.source, source)
		assert.Equal(t, language.MustParse(want.tag), tag)

		title, err := c.Text(localefix.MsgTitle)
		require.NoError(t, err)
		assert.Equal(t, "i18n Fix Test", title, "other locales fall back to English")
		delete(env, want.source)
	}
}

func TestCatalog_SkipsUnparseable(t *testing.T) {
	c := localefix.NewCatalog(mapEnv(map[string]string{
		"LC_ALL": "!!bogus",
		"LANG":   "C",
	}))
	require.NoError(t, c.Reload())
	tag, source := c.Locale()
	assert.Equal(t, "LANG", source)
	assert.Equal(t, language.English, tag)

	only := localefix.NewCatalog(mapEnv(map[string]string{"LC_ALL": "!!bogus"}))
	err := only.Reload()
	require.Error(t, err)
	assert.NotErrorIs(t, err, localefix.ErrNoLocale)
	assert.ErrorContains(t, err, "LC_ALL")
}

func TestCatalog_UnknownKey(t *testing.T) {
	c := localefix.NewCatalog(mapEnv(map[string]string{"LANG": "en_US.UTF-8"}))
	require.NoError(t, c.Reload())
	_, err := c.Text("nope")
	assert.Error(t, err)
}
