package marketplace

import (
	"context"
	"net/http"
	"testing"
)

func TestResolveXMLIDPicksExactMatch(t *testing.T) {
	c := testClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{
			"total": 2,
			"plugins": [
				{"id": 10, "xmlId": "org.rust.lang.extras", "name": "Rust Extras"},
				{"id": 22407, "xmlId": "org.rust.lang", "name": "Rust", "organization": "JetBrains"}
			]
		}`), nil
	})

	p, err := c.ResolveXMLID(context.Background(), "ORG.RUST.LANG")
	if err != nil {
		t.Fatalf("ResolveXMLID() returned error: %v", err)
	}
	if p == nil {
		t.Fatal("expected a match")
	}
	if p.ID != 22407 || p.XMLID != "org.rust.lang" {
		t.Errorf("wrong record resolved: %+v", p)
	}
}

func TestResolveXMLIDNoExactMatch(t *testing.T) {
	c := testClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{
			"total": 1,
			"plugins": [{"id": 10, "xmlId": "org.rust.lang.extras", "name": "Rust Extras"}]
		}`), nil
	})

	p, err := c.ResolveXMLID(context.Background(), "org.rust.lang")
	if err != nil {
		t.Fatalf("ResolveXMLID() returned error: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil for a fuzzy-only match, got %+v", p)
	}
}
