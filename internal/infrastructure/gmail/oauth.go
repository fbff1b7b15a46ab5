package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Authorizer runs an interactive consent flow and returns a fresh token.
type Authorizer func(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error)

type AuthConfig struct {
	// CredentialsPath is the OAuth client secret downloaded from Google Cloud.
	CredentialsPath string
	// TokenPath is where the user token is persisted between runs.
	TokenPath  string
	Scopes     []string
	Authorizer Authorizer
}

// CredentialManager loads, refreshes or obtains the user token.
type CredentialManager struct {
	cfg AuthConfig
	log *zap.Logger
}

func NewCredentialManager(cfg AuthConfig, log *zap.Logger) *CredentialManager {
	if cfg.Authorizer == nil {
		cfg.Authorizer = LoopbackAuthorizer(os.Stdout)
	}
	return &CredentialManager{cfg: cfg, log: log}
}

// TokenSource returns a token source for the configured scopes. A valid
// persisted token is reused; an expired one is refreshed when it carries a
// refresh token; otherwise the interactive flow runs. The token file is
// rewritten after a refresh or a new authorization. Whenever a refresh token
// and the client secret are available the returned source refreshes itself
// once the access token expires.
func (m *CredentialManager) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := tokenFromFile(m.cfg.TokenPath)
	if err != nil && !os.IsNotExist(errors.Cause(err)) {
		m.log.Warn("Ignoring unreadable token file", zap.String("path", m.cfg.TokenPath), zap.Error(err))
	}

	if tok != nil && tok.Valid() {
		m.log.Debug("Reusing persisted token", zap.String("path", m.cfg.TokenPath))
		if tok.RefreshToken == "" {
			return oauth2.StaticTokenSource(tok), nil
		}

		config, err := m.oauthConfig()
		if err != nil {
			m.log.Warn("Token cannot be refreshed during this run", zap.Error(err))
			return oauth2.StaticTokenSource(tok), nil
		}
		return config.TokenSource(ctx, tok), nil
	}

	config, err := m.oauthConfig()
	if err != nil {
		return nil, err
	}

	if tok != nil && tok.RefreshToken != "" {
		m.log.Info("Token expired, refreshing")
		refreshed, err := config.TokenSource(ctx, tok).Token()
		if err != nil {
			return nil, errors.Wrap(err, "refresh token")
		}
		tok = refreshed
	} else {
		m.log.Info("No usable token, starting OAuth flow")
		tok, err = m.cfg.Authorizer(ctx, config)
		if err != nil {
			return nil, errors.Wrap(err, "authorize")
		}
	}

	if err := saveToken(m.cfg.TokenPath, tok); err != nil {
		return nil, err
	}
	m.log.Info("Token saved", zap.String("path", m.cfg.TokenPath))

	return config.TokenSource(ctx, tok), nil
}

// NewService creates the Gmail API service with credentials from the manager.
func (m *CredentialManager) NewService(ctx context.Context) (*gmail.Service, error) {
	ts, err := m.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	srv, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, errors.Wrap(err, "create gmail service")
	}
	return srv, nil
}

func (m *CredentialManager) oauthConfig() (*oauth2.Config, error) {
	b, err := os.ReadFile(m.cfg.CredentialsPath)
	if err != nil {
		return nil, errors.Wrapf(err, "read client secret %s", m.cfg.CredentialsPath)
	}

	config, err := google.ConfigFromJSON(b, m.cfg.Scopes...)
	if err != nil {
		return nil, errors.Wrapf(err, "parse client secret %s", m.cfg.CredentialsPath)
	}
	return config, nil
}

// LoopbackAuthorizer serves the OAuth redirect on a local port and prints the
// consent URL to out.
func LoopbackAuthorizer(out io.Writer) Authorizer {
	return func(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, errors.Wrap(err, "listen for oauth redirect")
		}

		cfg := *config
		cfg.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

		state := uuid.NewString()
		verifier := oauth2.GenerateVerifier()

		type result struct {
			code string
			err  error
		}
		results := make(chan result, 1)

		srv := &http.Server{
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/" {
					http.NotFound(w, r)
					return
				}

				q := r.URL.Query()
				var res result
				switch {
				case q.Get("error") != "":
					res.err = errors.Errorf("authorization denied: %s", q.Get("error"))
				case q.Get("state") != state:
					res.err = errors.New("authorization state mismatch")
				case q.Get("code") == "":
					res.err = errors.New("authorization code missing")
				default:
					res.code = q.Get("code")
				}

				if res.err != nil {
					http.Error(w, res.err.Error(), http.StatusBadRequest)
				} else {
					_, _ = fmt.Fprintln(w, "Authorization complete. You can close this window.")
				}

				select {
				case results <- res:
				default:
				}
			}),
		}
		go func() { _ = srv.Serve(ln) }()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
		_, _ = fmt.Fprintln(out, "Open this URL in your browser and accept the permissions:")
		_, _ = fmt.Fprintln(out, authURL)

		var res result
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "wait for authorization")
		case res = <-results:
		}
		if res.err != nil {
			return nil, res.err
		}

		tok, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
		if err != nil {
			return nil, errors.Wrap(err, "exchange code for token")
		}
		return tok, nil
	}
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, errors.Wrapf(err, "decode token %s", path)
	}
	return &tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrapf(err, "save token %s", path)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return errors.Wrapf(err, "encode token %s", path)
	}
	return nil
}
