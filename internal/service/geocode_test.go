package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeocodeVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("api_key"); got != "secret" {
			t.Errorf("api_key = %q, want secret", got)
		}
		if got := r.URL.Query().Get("street"); got != "Main St 1" {
			t.Errorf("street = %q", got)
		}

		valid := r.URL.Query().Get("postalcode") == "12345"
		fmt.Fprintf(w, `{"isAddressValid": %t, "coordinates": {"lat": 52.52, "lng": 13.405}}`, valid)
	}))
	defer srv.Close()

	client := NewGeocodeClient(srv.URL, "secret")

	v, err := client.Verify(context.Background(), "Main St 1", "12345")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !v.Valid || v.Lat != 52.52 || v.Lng != 13.405 {
		t.Errorf("verification = %+v", v)
	}

	v, err = client.Verify(context.Background(), "Main St 1", "00000")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if v.Valid {
		t.Error("unknown postal code verified as valid")
	}
}

func TestGeocodeVerifyUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewGeocodeClient(srv.URL, "")
	if _, err := client.Verify(context.Background(), "Main St 1", "12345"); err == nil {
		t.Fatal("Verify returned nil on upstream failure")
	}
}
