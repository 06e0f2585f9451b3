package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/render"
	"github.com/goliatone/go-signup/pkg/testsupport"
	"github.com/goliatone/go-signup/pkg/transport"
)

func newTestServer(t *testing.T, options ...Option) *httptest.Server {
	t.Helper()
	srv, err := New(options...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postForm(t *testing.T, ts *httptest.Server, accept string, values url.Values) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/", strings.NewReader(values.Encode()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func validValues() url.Values {
	in := testsupport.ValidInput()
	return url.Values{
		model.FieldUsername: {in.Username},
		model.FieldEmail:    {in.Email},
		model.FieldPassword: {in.Password},
	}
}

func TestNewRequiresRegistrar(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatalf("expected error without registrar")
	}
}

func TestGetRendersForm(t *testing.T) {
	ts := newTestServer(t, WithRegistrar(testsupport.NewRegistrar(testsupport.Created())))

	resp, err := ts.Client().Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	for _, want := range []string{`name="username"`, `name="email"`, `type="password"`, "Already have an account?"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestSubmitInvalidDoesNotCallRegistrar(t *testing.T) {
	registrar := testsupport.NewRegistrar(testsupport.Created())
	ts := newTestServer(t, WithRegistrar(registrar))

	values := validValues()
	values.Set(model.FieldPassword, "short")
	resp, body := postForm(t, ts, "text/plain", values)

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if !strings.Contains(body, "Password too short") {
		t.Fatalf("body missing password error:\n%s", body)
	}
	if registrar.CallCount() != 0 {
		t.Fatalf("registrar called %d times", registrar.CallCount())
	}
}

func TestSubmitSuccess(t *testing.T) {
	registrar := testsupport.NewRegistrar(testsupport.Created())
	ts := newTestServer(t, WithRegistrar(registrar))

	resp, body := postForm(t, ts, "text/plain", validValues())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "user created") {
		t.Fatalf("body missing success message:\n%s", body)
	}
	if diff := cmp.Diff([]model.FormInput{testsupport.ValidInput()}, registrar.Calls()); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitFailureIsBadGateway(t *testing.T) {
	registrar := testsupport.NewRegistrar(transport.Err(&transport.TransportError{Op: "post", Err: errors.New("connection refused")}))
	ts := newTestServer(t, WithRegistrar(registrar))

	resp, body := postForm(t, ts, "text/plain", validValues())
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	if !strings.Contains(body, "Could not reach the registration service") {
		t.Fatalf("body missing failure banner:\n%s", body)
	}
}

func TestHiddenFieldsRendered(t *testing.T) {
	ts := newTestServer(t,
		WithRegistrar(testsupport.NewRegistrar(testsupport.Created())),
		WithHidden(render.CSRFToken("_csrf", "tok123")),
	)

	resp, err := ts.Client().Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `value="tok123"`) {
		t.Fatalf("hidden token not rendered:\n%s", body)
	}
}

func TestContractAndHealth(t *testing.T) {
	ts := newTestServer(t, WithRegistrar(testsupport.NewRegistrar(testsupport.Created())))

	resp, err := ts.Client().Get(ts.URL + "/openapi.json")
	if err != nil {
		t.Fatalf("get contract: %v", err)
	}
	defer resp.Body.Close()
	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode contract: %v", err)
	}
	if _, ok := doc.Paths[transport.DefaultPath]["post"]; !ok {
		t.Fatalf("contract has no POST %s: %v", transport.DefaultPath, doc.Paths)
	}

	health, err := ts.Client().Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", health.StatusCode)
	}
}

func TestAssetsServed(t *testing.T) {
	ts := newTestServer(t, WithRegistrar(testsupport.NewRegistrar(testsupport.Created())))

	resp, err := ts.Client().Get(ts.URL + "/assets/signup.css")
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("asset status = %d", resp.StatusCode)
	}
}

// The form posts through the real resty client into the mounted mock backend.
func TestEndToEndWithMockBackend(t *testing.T) {
	var client *transport.Client
	registrar := transport.RegistrarFunc(func(ctx context.Context, in model.FormInput) transport.Result {
		return client.Register(ctx, in)
	})
	ts := newTestServer(t, WithRegistrar(registrar), WithMockBackend(transport.DefaultPath))

	var err error
	client, err = transport.NewClient(transport.WithBaseURL(ts.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	resp, body := postForm(t, ts, "text/plain", validValues())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first submit status = %d\n%s", resp.StatusCode, body)
	}

	resp, body = postForm(t, ts, "text/plain", validValues())
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("duplicate submit status = %d, want 502\n%s", resp.StatusCode, body)
	}
	if !strings.Contains(body, "Username already taken") {
		t.Fatalf("duplicate error not mapped onto username:\n%s", body)
	}
}

func TestMockBackendRateLimited(t *testing.T) {
	ts := newTestServer(t,
		WithRegistrar(testsupport.NewRegistrar(testsupport.Created())),
		WithMockBackend("users/signUp"),
		WithRateLimit(0.001, 1),
	)

	post := func() *http.Response {
		payload, _ := json.Marshal(model.FormInput{Username: "x", Email: "bad", Password: "short"})
		resp, err := ts.Client().Post(ts.URL+transport.DefaultPath, "application/json", bytes.NewReader(payload))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		return resp
	}

	if got := post().StatusCode; got != http.StatusUnprocessableEntity {
		t.Fatalf("first status = %d, want 422", got)
	}
	resp := post()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}
}
