package scalar_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/docpages/pkg/module"
	"github.com/JaimeStill/docpages/web/scalar"
)

func TestNewModule(t *testing.T) {
	m, err := scalar.NewModule("/scalar", "Docpages API", "/api/openapi.json")
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	router := module.NewRouter()
	router.Mount(m)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scalar", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data-url="/api/openapi.json"`) {
		t.Errorf("spec url missing from page: %s", body)
	}
	if !strings.Contains(body, "<title>Docpages API</title>") {
		t.Errorf("title missing from page")
	}
}
