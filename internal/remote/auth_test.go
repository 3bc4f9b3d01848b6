package remote

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"golang.org/x/oauth2"

	"github.com/adityakmr7/focus25-sub001/internal/model"
)

func TestSaveLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth", "tokens.json")

	tok, err := LoadToken(path)
	if err != nil || tok != nil {
		t.Fatalf("missing file: tok=%v err=%v", tok, err)
	}

	if err := SaveToken(path, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatal(err)
	}
	tok, err = LoadToken(path)
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "a" || tok.RefreshToken != "r" {
		t.Errorf("token = %+v", tok)
	}
}

func TestTokenSourceNotLoggedIn(t *testing.T) {
	cfg := AuthConfig{TokenFile: filepath.Join(t.TempDir(), "tokens.json")}
	if _, err := TokenSource(context.Background(), cfg); !errors.Is(err, model.ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestLogoutRemovesToken(t *testing.T) {
	cfg := AuthConfig{TokenFile: filepath.Join(t.TempDir(), "tokens.json")}
	SaveToken(cfg.TokenFile, &oauth2.Token{AccessToken: "a"})
	if err := Logout(cfg); err != nil {
		t.Fatal(err)
	}
	if err := Logout(cfg); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if _, err := TokenSource(context.Background(), cfg); !errors.Is(err, model.ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

type seqTokenSource struct{ toks []*oauth2.Token }

func (s *seqTokenSource) Token() (*oauth2.Token, error) {
	tok := s.toks[0]
	if len(s.toks) > 1 {
		s.toks = s.toks[1:]
	}
	return tok, nil
}

func TestSavingTokenSourcePersistsRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	ts := &savingTokenSource{
		ts:   &seqTokenSource{toks: []*oauth2.Token{{AccessToken: "old"}, {AccessToken: "new"}}},
		path: path,
		last: "old",
	}

	ts.Token()
	if tok, _ := LoadToken(path); tok != nil {
		t.Fatalf("unchanged token should not be written, got %+v", tok)
	}
	ts.Token()
	tok, err := LoadToken(path)
	if err != nil || tok == nil || tok.AccessToken != "new" {
		t.Fatalf("saved token = %+v, %v", tok, err)
	}
}
