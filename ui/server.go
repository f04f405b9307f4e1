// Package ui serves a small web playground: paste Odin source to see its
// tree and diagnostics, or scan a directory and follow its progress.
package ui

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/odinsyntax/format"
	"github.com/dhamidi/odinsyntax/odin/codebase"
	"github.com/dhamidi/odinsyntax/odin/scanner"
)

var log = commonlog.GetLogger("odinsyntax.ui")

//go:embed templates
var embeddedFS embed.FS

type Server struct {
	codebase   *codebase.Codebase
	scanner    *scanner.Scanner
	mux        *http.ServeMux
	templateFS fs.FS
	funcMap    template.FuncMap
}

// NewServer serves parses and scans with c. Templates in ui/templates
// below the working directory take precedence over the embedded ones.
func NewServer(c *codebase.Codebase, workers int) (*Server, error) {
	templateFS := layeredFS{os.DirFS("ui/templates"), mustSub(embeddedFS, "templates")}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"position": func(f *codebase.File, offset int) string {
			return f.Lines.Position(offset).String()
		},
	}

	if _, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "*.html"); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		codebase:   c,
		scanner:    scanner.New(c, workers),
		mux:        http.NewServeMux(),
		templateFS: templateFS,
		funcMap:    funcMap,
	}

	s.mux.HandleFunc("POST /parse", s.handleParse)
	s.mux.HandleFunc("POST /scan", s.handleScan)
	s.mux.HandleFunc("GET /scans/{id}", s.handleGetScan)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.New("").Funcs(s.funcMap).ParseFS(s.templateFS, "*.html")
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Errorf("render %s: %s", name, err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encode response: %s", err)
	}
}

func isJSON(header string) bool {
	mediaType, _, err := mime.ParseMediaType(header)
	return err == nil && mediaType == "application/json"
}

// decode fills dst from a JSON body, or from the form values through
// fromForm for any other content type.
func decode(r *http.Request, dst any, fromForm func(url.Values)) error {
	if isJSON(r.Header.Get("Content-Type")) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("invalid form data: %w", err)
	}
	fromForm(r.Form)
	return nil
}

type parseRequest struct {
	Source string `json:"source"`
	Format string `json:"format"`
}

type parseResponse struct {
	Format      string                `json:"format"`
	Output      string                `json:"output"`
	Diagnostics []codebase.Diagnostic `json:"diagnostics"`

	// for the HTML view only
	Source string         `json:"-"`
	File   *codebase.File `json:"-"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", parseResponse{Format: "sexp"})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	err := decode(r, &req, func(form url.Values) {
		req.Source = form.Get("source")
		req.Format = form.Get("format")
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Format == "" {
		req.Format = "sexp"
	}

	var out bytes.Buffer
	enc, err := format.NewEncoder(req.Format, &out)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// snippets are parsed outside the codebase so they do not show up in
	// scans
	f := codebase.New("", s.codebase.Parser()).UpdateFile("playground.odin", []byte(req.Source))
	if err := enc.Encode(f.Tree); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := parseResponse{
		Format:      req.Format,
		Output:      out.String(),
		Diagnostics: f.Diagnostics(),
		Source:      req.Source,
		File:        f,
	}
	if isJSON(r.Header.Get("Content-Type")) {
		writeJSON(w, resp)
		return
	}
	s.render(w, "index.html", resp)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanner.Request
	err := decode(r, &req, func(form url.Values) {
		req.Path = form.Get("path")
		req.Files = form["files"]
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Path == "" && len(req.Files) == 0 {
		http.Error(w, "must provide path or files", http.StatusBadRequest)
		return
	}

	id := s.scanner.Submit(req)
	http.Redirect(w, r, "/scans/"+id, http.StatusSeeOther)
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	result, ok := s.scanner.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "scan not found", http.StatusNotFound)
		return
	}
	if isJSON(r.Header.Get("Accept")) {
		writeJSON(w, result)
		return
	}
	s.render(w, "scan.html", result)
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// layeredFS opens a name from the first layer that has it.
type layeredFS []fs.FS

func (l layeredFS) Open(name string) (fs.File, error) {
	var err error
	for _, fsys := range l {
		var f fs.File
		if f, err = fsys.Open(name); err == nil {
			return f, nil
		}
	}
	return nil, err
}
