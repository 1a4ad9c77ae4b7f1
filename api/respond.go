package api

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/Goofygiraffe06/signup/internal/logging"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.ErrorLog("JSON encoding failed: %v", err)
	}
}

func respondPage(w http.ResponseWriter, code int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		logging.ErrorLog("Template %s rendering failed: %v", name, err)
	}
}
