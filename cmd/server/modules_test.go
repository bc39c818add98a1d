package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/docpages/internal/infrastructure"
	"github.com/JaimeStill/docpages/pkg/lifecycle"
	"github.com/JaimeStill/docpages/pkg/logging"
)

func TestBuildRouter_HealthEndpoints(t *testing.T) {
	infra := &infrastructure.Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logging.Discard(),
	}
	router := buildRouter(infra)

	status := func(path string) int {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec.Code
	}

	if got := status("/healthz"); got != http.StatusOK {
		t.Errorf("healthz = %d, want 200", got)
	}
	if got := status("/readyz"); got != http.StatusServiceUnavailable {
		t.Errorf("readyz before startup = %d, want 503", got)
	}

	infra.Lifecycle.WaitForStartup()
	if got := status("/readyz"); got != http.StatusOK {
		t.Errorf("readyz after startup = %d, want 200", got)
	}
}
