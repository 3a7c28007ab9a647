package agentql

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestBuildQueryMarksListFields(t *testing.T) {
	got := BuildQuery([]string{"product_name", "images", " ", "benefits"})
	want := "{\n    product_name\n    images[]\n    benefits[]\n}"
	if got != want {
		t.Fatalf("BuildQuery = %q, want %q", got, want)
	}
	if !strings.Contains(BuildQuery(nil), "target_audience") {
		t.Fatalf("default query should include target_audience")
	}
}

func TestExtractProduct(t *testing.T) {
	var gotReq queryRequest
	client, err := NewClient(Options{
		APIKey: "aql",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("X-API-Key") != "aql" {
				t.Errorf("missing api key header")
			}
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &gotReq)
			body := `{"data":{"product_name":"Desk Lamp","price":"$49","features":["dimmable","USB-C"],"target_audience":"remote workers"}}`
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(body))}, nil
		})},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	res, err := client.ExtractProduct(context.Background(), "https://shop.example/lamp", nil)
	if err != nil {
		t.Fatalf("ExtractProduct returned error: %v", err)
	}
	if !gotReq.IsScrollToBottomEnabled || gotReq.URL != "https://shop.example/lamp" {
		t.Fatalf("request = %+v", gotReq)
	}
	if res.ProductName != "Desk Lamp" || len(res.Features) != 2 || res.TargetAudience != "remote workers" {
		t.Fatalf("research = %+v", res)
	}
	if res.URL != "https://shop.example/lamp" {
		t.Fatalf("url = %q", res.URL)
	}
}

func TestExtractProductHTTPError(t *testing.T) {
	client, _ := NewClient(Options{
		APIKey: "aql",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusForbidden, Body: io.NopCloser(strings.NewReader("nope"))}, nil
		})},
	})
	if _, err := client.ExtractProduct(context.Background(), "https://shop.example", nil); err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("error = %v, want status 403", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Options{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("error = %v, want ErrMissingAPIKey", err)
	}
}
