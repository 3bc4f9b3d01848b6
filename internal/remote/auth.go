package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"

	"github.com/adityakmr7/focus25-sub001/internal/model"
)

// AuthConfig describes the OAuth2 provider and where tokens are kept.
type AuthConfig struct {
	ClientID      string
	DeviceAuthURL string
	TokenURL      string
	Scopes        []string
	// TokenFile is the token cache path; empty means DefaultTokenFile.
	TokenFile string
}

func (a AuthConfig) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID: a.ClientID,
		Scopes:   a.Scopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: a.DeviceAuthURL,
			TokenURL:      a.TokenURL,
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

func (a AuthConfig) tokenFile() (string, error) {
	if a.TokenFile != "" {
		return a.TokenFile, nil
	}
	return DefaultTokenFile()
}

// DefaultTokenFile returns ~/.focus25/auth/tokens.json
func DefaultTokenFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".focus25", "auth", "tokens.json"), nil
}

// LoadToken reads a saved token. A missing file yields nil, nil.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// SaveToken writes tok to path atomically.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// Login runs the OAuth2 device code flow, printing the verification
// instructions to out, and saves the resulting token.
func Login(ctx context.Context, cfg AuthConfig, out io.Writer) (*oauth2.Token, error) {
	path, err := cfg.tokenFile()
	if err != nil {
		return nil, err
	}
	oc := cfg.oauth2Config()

	resp, err := oc.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(out, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(out, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(out)

	tok, err := oc.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := SaveToken(path, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// Logout removes the saved token.
func Logout(cfg AuthConfig) error {
	path, err := cfg.tokenFile()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// TokenSource returns a refreshing token source backed by the saved
// token. It returns model.ErrNotAuthenticated when nobody has logged in.
func TokenSource(ctx context.Context, cfg AuthConfig) (oauth2.TokenSource, error) {
	path, err := cfg.tokenFile()
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(path)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, model.ErrNotAuthenticated
	}
	return &savingTokenSource{
		ts:   cfg.oauth2Config().TokenSource(ctx, tok),
		path: path,
		last: tok.AccessToken,
	}, nil
}

// savingTokenSource persists refreshed tokens.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		// Best effort; the in-memory token still works for this process.
		if SaveToken(s.path, tok) == nil {
			s.last = tok.AccessToken
		}
	}
	return tok, nil
}
