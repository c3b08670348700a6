package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	lg "github.com/livegraph/livegraph/pkg"
)

func TestNodeArg(t *testing.T) {
	cases := map[string]string{
		"1":     `1`,
		"true":  `true`,
		`"1"`:   `"1"`,
		"alpha": `"alpha"`,
		"a b":   `"a b"`,
	}
	for in, want := range cases {
		if got := string(nodeArg(in)); got != want {
			t.Errorf("nodeArg(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestAPIURL(t *testing.T) {
	c := lg.TestConfig()
	c.WebAPI.Bind = "0.0.0.0"
	c.WebAPI.Port = "9000"
	u, err := apiURL(c, SubCommandArgs{}, "/graph")
	if err != nil || u != "http://localhost:9000/graph" {
		t.Fatalf("apiURL from config: %s %v", u, err)
	}
	u, err = apiURL(c, SubCommandArgs{Remote: "http://graph.example:8080/"}, "/edges")
	if err != nil || u != "http://graph.example:8080/edges" {
		t.Fatalf("apiURL from --remote: %s %v", u, err)
	}
}

func TestCallAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"invalid-node","message":"node: node identity cannot be null"}}`))
	}))
	defer srv.Close()

	_, err := callAPI("POST", srv.URL+"/nodes", map[string]any{"node": nil})
	if !lg.IsInvalidNodeError(err) {
		t.Fatalf("expected an invalid-node error, got %v", err)
	}
}
