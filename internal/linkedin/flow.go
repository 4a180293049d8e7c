package linkedin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/browser"
)

// FlowState names the steps of the authorization flow.
type FlowState string

const (
	StateAwaitingCode   FlowState = "awaiting_code"
	StateExchangingCode FlowState = "exchanging_code"
	StateTokenStored    FlowState = "token_stored"
	StateFailed         FlowState = "failed"
)

// TokenSaver persists an exchanged access token.
type TokenSaver func(token string) error

// Flow runs the 3-legged OAuth dance: open the authorization URL,
// serve exactly one loopback callback, exchange the code, and hand
// the token to the saver.
type Flow struct {
	auth   AuthConfig
	save   TokenSaver
	logger *slog.Logger
	browse func(string) error

	mu        sync.Mutex
	state     FlowState
	authState string
}

// NewFlow creates an authorization flow. The saver receives the
// access token once the exchange succeeds.
func NewFlow(auth AuthConfig, save TokenSaver, logger *slog.Logger) (*Flow, error) {
	if err := auth.Validate(); err != nil {
		return nil, err
	}
	if save == nil {
		return nil, errors.New("token saver is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		auth:   auth,
		save:   save,
		logger: logger,
		browse: browser.OpenURL,
		state:  StateAwaitingCode,
	}, nil
}

// State reports the current flow step.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) setState(s FlowState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
	f.logger.Info("authorization flow state", slog.String("state", string(s)))
}

// AuthorizeURL returns the URL the member must visit, generating the
// CSRF state on first call.
func (f *Flow) AuthorizeURL() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authState == "" {
		s, err := GenerateState()
		if err != nil {
			return "", err
		}
		f.authState = s
	}
	return f.auth.AuthorizeURL(f.authState), nil
}

// Run drives the flow to completion. The browser open is best-effort;
// the authorization URL is always logged so the member can visit it
// by hand.
func (f *Flow) Run(ctx context.Context) error {
	authorizeURL, err := f.AuthorizeURL()
	if err != nil {
		f.setState(StateFailed)
		return err
	}

	f.logger.Info("visit this URL to authorize the application", slog.String("url", authorizeURL))
	if err := f.browse(authorizeURL); err != nil {
		f.logger.Warn("could not open browser", slog.String("error", err.Error()))
	}

	code, err := f.awaitCallback(ctx)
	if err != nil {
		f.setState(StateFailed)
		return err
	}

	f.setState(StateExchangingCode)
	token, err := f.auth.OAuthConfig().Exchange(ctx, code)
	if err != nil {
		f.setState(StateFailed)
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	if err := f.save(token.AccessToken); err != nil {
		f.setState(StateFailed)
		return fmt.Errorf("store access token: %w", err)
	}

	f.setState(StateTokenStored)
	return nil
}

// awaitCallback binds the redirect URI's address and serves exactly
// one callback request, returning the authorization code.
func (f *Flow) awaitCallback(ctx context.Context) (string, error) {
	redirect, err := url.Parse(f.auth.redirectURI())
	if err != nil {
		return "", fmt.Errorf("parse redirect uri: %w", err)
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return "", fmt.Errorf("listen on %s: %w", redirect.Host, err)
	}

	type callback struct {
		code string
		err  error
	}
	results := make(chan callback, 1)

	callbackPath := redirect.Path
	if callbackPath == "" {
		callbackPath = "/"
	}

	var once sync.Once
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		code, cbErr := f.parseCallback(r)
		if cbErr != nil {
			writeCallbackPage(w, http.StatusBadRequest, "Authorization failed", cbErr.Error())
		} else {
			writeCallbackPage(w, http.StatusOK, "Authorization complete", "The access token is being stored. You can close this window and return to the terminal.")
		}
		once.Do(func() { results <- callback{code: code, err: cbErr} })
	})

	srv := &http.Server{Handler: mux}
	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			once.Do(func() { results <- callback{err: serveErr} })
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	f.logger.Info("waiting for authorization callback", slog.String("address", redirect.Host), slog.String("path", callbackPath))

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("authorization cancelled: %w", ctx.Err())
	case cb := <-results:
		if cb.err != nil {
			return "", cb.err
		}
		return cb.code, nil
	}
}

func (f *Flow) parseCallback(r *http.Request) (string, error) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("authorization denied: %s: %s", e, q.Get("error_description"))
	}
	f.mu.Lock()
	wantState := f.authState
	f.mu.Unlock()
	if q.Get("state") != wantState {
		return "", errors.New("authorization state mismatch")
	}
	code := q.Get("code")
	if code == "" {
		return "", errors.New("callback carried no authorization code")
	}
	return code, nil
}

func writeCallbackPage(w http.ResponseWriter, status int, heading, detail string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>LinkedIn Authorization</title></head><body><h1>%s</h1><p>%s</p></body></html>", heading, detail)
}
