package taggerhttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fluentlab/fluentlab/pkg/provider/tagger"
)

func TestClient_Tag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tag" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Tokens []string `json:"tokens"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		tags := make([]tagger.TaggedToken, len(req.Tokens))
		for i, tok := range req.Tokens {
			cat := tagger.CategoryOther
			if tok == "dog" {
				cat = tagger.CategoryNoun
			}
			tags[i] = tagger.TaggedToken{Token: tok, Category: cat}
		}
		json.NewEncoder(w).Encode(map[string]any{"tags": tags})
	}))
	defer srv.Close()

	tags, err := New(srv.URL).Tag(context.Background(), []string{"the", "dog"})
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	if len(tags) != 2 || tags[1].Category != tagger.CategoryNoun {
		t.Errorf("tags = %+v", tags)
	}
}

func TestClient_Tag_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"tags": []tagger.TaggedToken{}})
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Tag(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("want error for tag count mismatch")
	}
}

func TestClient_Lemmatize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lemma" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"lemma": "go"})
	}))
	defer srv.Close()

	lemma, err := New(srv.URL).Lemmatize(context.Background(), "went", tagger.CategoryVerb)
	if err != nil {
		t.Fatalf("Lemmatize: %v", err)
	}
	if lemma != "go" {
		t.Errorf("lemma = %q, want %q", lemma, "go")
	}
}

func TestClient_UnavailableOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Tag(context.Background(), []string{"a"})
	if !errors.Is(err, tagger.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestClient_UnavailableWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // shut down before use

	_, err := New(srv.URL).Tag(context.Background(), []string{"a"})
	if !errors.Is(err, tagger.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
