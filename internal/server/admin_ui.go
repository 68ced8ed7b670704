package server

import (
	"html/template"
	"net/http"
)

var adminTmpl = template.Must(template.New("admin").Parse(`<!doctype html>
<html>
<head><title>cgtminer admin</title>
<style>
body { font-family: monospace; margin: 2rem; }
table { border-collapse: collapse; }
td, th { border: 1px solid #999; padding: 0.3rem 0.6rem; text-align: left; }
</style>
</head>
<body>
<h1>cgtminer on {{.Port}}</h1>
<table>
<tr><th>Method</th><th>Pattern</th><th>Summary</th><th>Example body</th></tr>
{{range .Routes}}<tr><td>{{.Method}}</td><td>{{.Pattern}}</td><td>{{.Summary}}</td><td><code>{{.ExampleBody}}</code></td></tr>
{{end}}
</table>
</body>
</html>`))

type adminPageData struct {
	Port   string
	Routes []RouteDoc
}

// RegisterAdminUI exposes the route list, as JSON for tooling and as a
// plain HTML table for humans.
func RegisterAdminUI(mux *http.ServeMux, rr *RouteRegistry, port string) {
	mux.HandleFunc("GET /_/admin/routes.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, rr.List())
	})

	mux.HandleFunc("GET /_/admin", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := adminTmpl.Execute(w, adminPageData{Port: port, Routes: rr.List()}); err != nil {
			http.Error(w, err.Error(), 500)
		}
	})
}
