// Package preview serves generated icon assets for inspection in a browser.
package preview

import (
	"encoding/json"
	"html/template"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aether/icongen/internal/datastore"
)

type Server struct {
	ds *datastore.DataStore
}

func NewServer(ds *datastore.DataStore) *Server {
	return &Server{ds: ds}
}

// Router returns the preview routes:
//
//	GET /             HTML index of all assets
//	GET /api/assets   asset list as JSON
//	GET /icons/*      the files themselves
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/api/assets", s.handleListAssets)
	r.Get("/icons/*", s.handleIcon)
	return r
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Icons</title></head>
<body>
<h1>{{.Dir}}</h1>
<table>
{{range .Assets}}<tr>
<td>{{if .Image}}<img src="/icons/{{.Name}}" alt="{{.Name}}">{{end}}</td>
<td><a href="/icons/{{.Name}}">{{.Name}}</a></td>
<td>{{.Size}} bytes</td>
</tr>
{{end}}</table>
</body>
</html>
`))

type indexAsset struct {
	datastore.Asset
	Image bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.notModified(w, r, s.ds.GetETagForDir()) {
		return
	}

	assets, err := s.ds.ListAssets()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := struct {
		Dir    string
		Assets []indexAsset
	}{Dir: s.ds.DataDir}
	for _, a := range assets {
		ext := strings.ToLower(path.Ext(a.Name))
		data.Assets = append(data.Assets, indexAsset{Asset: a, Image: ext == ".png" || ext == ".ico"})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	indexTmpl.Execute(w, data)
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	if s.notModified(w, r, s.ds.GetETagForDir()) {
		return
	}

	assets, err := s.ds.ListAssets()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if assets == nil {
		assets = []datastore.Asset{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assets)
}

func (s *Server) handleIcon(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if name == "" || strings.Contains(name, "/") || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}
	if strings.HasSuffix(name, ".ico") {
		w.Header().Set("Content-Type", "image/x-icon")
	} else if strings.HasSuffix(name, ".icns") {
		w.Header().Set("Content-Type", "image/icns")
	}
	http.ServeFile(w, r, s.ds.Path(name))
}

// notModified sets the ETag header and answers 304 when the client already
// holds that version.
func (s *Server) notModified(w http.ResponseWriter, r *http.Request, tag int64) bool {
	etag := strconv.FormatInt(tag, 10)
	w.Header()["ETag"] = []string{etag}
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}
