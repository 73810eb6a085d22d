package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mossy-p/camrelay/internal/models"
)

func TestFetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"cameraAvailable":true,"viewers":3,"connections":5}`))
	}))
	defer srv.Close()

	st, err := fetchStatus(srv.Client(), srv.URL+"/")
	if err != nil {
		t.Fatalf("fetchStatus failed: %v", err)
	}
	want := models.RelayStatus{CameraAvailable: true, Viewers: 3, Connections: 5}
	if st != want {
		t.Errorf("Expected %+v, got %+v", want, st)
	}
}

func TestFetchStatusHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := fetchStatus(srv.Client(), srv.URL); err == nil {
		t.Error("Expected an error for a 502 response")
	}
}

func TestRenderStatus(t *testing.T) {
	var buf bytes.Buffer
	renderStatus(&buf, models.RelayStatus{CameraAvailable: false, Viewers: 2, Connections: 2})

	out := buf.String()
	for _, want := range []string{"Camera", "offline", "Viewers", "Connections"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, out)
		}
	}
}
