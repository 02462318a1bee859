package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

// newPayPalServer fakes the token, create and capture endpoints.
func newPayPalServer(t *testing.T, createStatus int) (*httptest.Server, *map[string]any) {
	t.Helper()
	var lastOrder map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"access_token":"A21AA","token_type":"Bearer","expires_in":32400}`))
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer A21AA" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewDecoder(r.Body).Decode(&lastOrder)
		w.WriteHeader(createStatus)
		w.Write([]byte(`{"id":"5O190127TN364715T","status":"CREATED","links":[
			{"href":"https://api.sandbox.paypal.com/v2/checkout/orders/5O190127TN364715T","rel":"self","method":"GET"},
			{"href":"https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T","rel":"approve","method":"GET"}]}`))
	})
	mux.HandleFunc("/v2/checkout/orders/5O190127TN364715T/capture", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"5O190127TN364715T","status":"COMPLETED"}`))
	})
	mux.HandleFunc("/v2/checkout/orders/UNAPPROVED/capture", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"ORDER_NOT_APPROVED"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &lastOrder
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{ClientID: "client", Secret: "secret", BaseURL: baseURL})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewClientCredentials(t *testing.T) {
	tests := []Config{
		{},
		{ClientID: "client"},
		{Secret: "secret"},
	}
	for _, cfg := range tests {
		if _, err := NewClient(cfg); !errors.Is(err, ErrCredentialsMissing) {
			t.Errorf("%+v: expected ErrCredentialsMissing, got %v", cfg, err)
		}
	}
}

func TestBaseURLFor(t *testing.T) {
	tests := []struct{ env, want string }{
		{"live", LiveBaseURL},
		{"LIVE", LiveBaseURL},
		{"sandbox", SandboxBaseURL},
		{"", SandboxBaseURL},
	}
	for _, tt := range tests {
		if got := BaseURLFor(tt.env); got != tt.want {
			t.Errorf("BaseURLFor(%q) = %s, want %s", tt.env, got, tt.want)
		}
	}

	c, _ := NewClient(Config{ClientID: "a", Secret: "b", Env: "live"})
	if c.BaseURL() != LiveBaseURL {
		t.Errorf("expected live base URL, got %s", c.BaseURL())
	}
}

func TestAccessToken(t *testing.T) {
	srv, _ := newPayPalServer(t, http.StatusCreated)

	tok, err := newTestClient(t, srv.URL).AccessToken(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tok != "A21AA" {
		t.Errorf("unexpected token %q", tok)
	}

	bad, _ := NewClient(Config{ClientID: "client", Secret: "wrong", BaseURL: srv.URL})
	_, err = bad.AccessToken(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || apiErr.Op != "token" {
		t.Errorf("expected 401 token APIError, got %v", err)
	}
}

func TestCreateOrder(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusOK} {
		srv, last := newPayPalServer(t, status)

		order, err := newTestClient(t, srv.URL).CreateOrder(context.Background(), decimal.RequireFromString("9.9"), "usd")
		if err != nil {
			t.Fatalf("status %d: %v", status, err)
		}
		if order.ID != "5O190127TN364715T" || order.Status != "CREATED" {
			t.Errorf("unexpected order: %+v", order)
		}
		if order.ApprovalLink != "https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T" {
			t.Errorf("unexpected approval link %q", order.ApprovalLink)
		}
		if len(order.Raw) == 0 {
			t.Error("expected raw response")
		}

		req := *last
		if req["intent"] != "CAPTURE" {
			t.Errorf("expected CAPTURE intent, got %v", req["intent"])
		}
		units := req["purchase_units"].([]any)
		amount := units[0].(map[string]any)["amount"].(map[string]any)
		if amount["value"] != "9.90" || amount["currency_code"] != "USD" {
			t.Errorf("unexpected amount %v", amount)
		}
	}
}

func TestCreateOrderRejected(t *testing.T) {
	srv, _ := newPayPalServer(t, http.StatusBadRequest)
	_, err := newTestClient(t, srv.URL).CreateOrder(context.Background(), decimal.NewFromInt(10), "USD")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Op != "create order" {
		t.Errorf("expected create order APIError, got %v", err)
	}
}

func TestCreateOrderInvalidAmount(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:0")
	for _, amt := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		if _, err := c.CreateOrder(context.Background(), amt, "USD"); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %s: expected ErrInvalidAmount, got %v", amt, err)
		}
	}
}

func TestCaptureOrder(t *testing.T) {
	srv, _ := newPayPalServer(t, http.StatusCreated)
	c := newTestClient(t, srv.URL)

	capture, err := c.CaptureOrder(context.Background(), "5O190127TN364715T")
	if err != nil {
		t.Fatal(err)
	}
	if capture.Status != "COMPLETED" || capture.ID != "5O190127TN364715T" {
		t.Errorf("unexpected capture: %+v", capture)
	}

	_, err = c.CaptureOrder(context.Background(), "UNAPPROVED")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 APIError, got %v", err)
	}

	if _, err := c.CaptureOrder(context.Background(), ""); err == nil {
		t.Error("expected error for empty order id")
	}
}
