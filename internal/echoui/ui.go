// Package echoui serves a one-field echo page used to check that the UI
// stack renders under the current locale, and launches it through an
// ordered list of configurations.
package echoui

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/petasbytes/sidekick/internal/localefix"
)

//go:embed page.html
var pageHTML string

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

const maxInput = 1 << 16

// labels are resolved once so a later locale change cannot break a page
// that is already being served.
type labels struct {
	Lang        string
	Title       string
	Description string
	InputLabel  string
	Placeholder string
	InputValue  string
	OutputLabel string
	Submit      string
	Article     string
	Empty       string
}

// UI is the echo interface. It is safe for concurrent use.
type UI struct {
	cat    *localefix.Catalog
	labels labels
}

// NewUI resolves every label from cat; it fails when cat has no locale.
func NewUI(cat *localefix.Catalog) (*UI, error) {
	l := labels{}
	for key, dst := range map[string]*string{
		localefix.MsgTitle:        &l.Title,
		localefix.MsgDescription:  &l.Description,
		localefix.MsgInputLabel:   &l.InputLabel,
		localefix.MsgPlaceholder:  &l.Placeholder,
		localefix.MsgInputDefault: &l.InputValue,
		localefix.MsgOutputLabel:  &l.OutputLabel,
		localefix.MsgSubmit:       &l.Submit,
		localefix.MsgArticle:      &l.Article,
		localefix.MsgEmpty:        &l.Empty,
	} {
		s, err := cat.Text(key)
		if err != nil {
			return nil, fmt.Errorf("label %s: %w", key, err)
		}
		*dst = s
	}
	tag, _ := cat.Locale()
	base, _ := tag.Base()
	l.Lang = base.String()
	return &UI{cat: cat, labels: l}, nil
}

// Echo is the interface function.
func (u *UI) Echo(text string) (string, error) {
	return u.cat.Text(localefix.MsgReply, text)
}

type page struct {
	labels
	Input  string
	Output string
	Error  string
}

// Handler serves the page and a JSON endpoint at /api/echo. Docs pages are
// mounted only when v.Docs is set; error details are sent only when
// v.ShowError is set.
func (u *UI) Handler(v Variant) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		u.render(w, page{labels: u.labels, Input: u.labels.InputValue})
	})
	mux.HandleFunc("POST /{$}", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxInput)
		text := r.PostFormValue("text")
		p := page{labels: u.labels, Input: text}
		if strings.TrimSpace(text) == "" {
			if v.ShowError {
				p.Error = u.labels.Empty
			}
			u.render(w, p)
			return
		}
		out, err := u.Echo(text)
		if err != nil {
			if v.ShowError {
				p.Error = err.Error()
			}
			u.render(w, p)
			return
		}
		p.Output = out
		u.render(w, p)
	})
	mux.HandleFunc("POST /api/echo", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxInput))
		if err != nil || !gjson.ValidBytes(body) {
			u.fail(w, v, http.StatusBadRequest, "request body must be JSON")
			return
		}
		text := gjson.GetBytes(body, "text")
		if !text.Exists() {
			u.fail(w, v, http.StatusBadRequest, `missing "text" field`)
			return
		}
		out, err := u.Echo(text.String())
		if err != nil {
			u.fail(w, v, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"output": out})
	})
	if v.Docs {
		mux.HandleFunc("GET /docs", u.docs)
		mux.HandleFunc("GET /redoc", u.docs)
	}
	return mux
}

func (u *UI) render(w http.ResponseWriter, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, p); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (u *UI) fail(w http.ResponseWriter, v Variant, status int, detail string) {
	msg := http.StatusText(status)
	if v.ShowError {
		msg = detail
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

const docsText = `POST /api/echo
  request:  {"text": "<input>"}
  response: {"output": "<reply>"}
`

func (u *UI) docs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "%s\n\n%s", u.labels.Title, docsText)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
