// Package bytes implements the blob store connector: the raw-file store
// that also records boefje run metadata. Unlike the other upstreams the
// bytes API requires a bearer token, obtained with a form login and reused
// until the API rejects it.
package bytes

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/strixlab/patrol/internal/adapters/upstream"
	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/domain/model"
	apperrors "github.com/strixlab/patrol/internal/errors"
)

var _ core.BlobStoreService = (*Service)(nil)

// ServiceOptions groups dependencies and credentials for the bytes Service.
type ServiceOptions struct {
	Client *upstream.Client

	// Username and Password authenticate against the token endpoint.
	Username string
	Password string

	Logger *slog.Logger
}

// Service talks to the bytes REST API.
type Service struct {
	client   *upstream.Client
	username string
	password string
	logger   *slog.Logger

	mu    sync.Mutex
	token string
}

// NewService constructs a bytes Service. The first authenticated call logs
// in lazily.
func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:   opts.Client,
		username: opts.Username,
		password: opts.Password,
		logger:   logger.With("adapter", "bytes"),
	}
}

// tokenResponse is the body of a successful form login.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// GetLastRun returns the newest run record for the boefje/OOI/organisation
// triple, or nil when that combination never ran.
func (s *Service) GetLastRun(ctx context.Context, params core.LastRunParams) (*model.BoefjeMeta, error) {
	if params.BoefjeID == "" || params.InputOOI == "" || params.OrganisationID == "" {
		return nil, apperrors.Validation("boefje id, input ooi and organisation are required")
	}

	query := url.Values{}
	query.Set("boefje_id", params.BoefjeID)
	query.Set("input_ooi", params.InputOOI)
	query.Set("organization", params.OrganisationID)
	query.Set("limit", "1")
	query.Set("descending", "true")

	var metas []model.BoefjeMeta
	if err := s.getJSON(ctx, "/bytes/boefje_meta", query, &metas); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(metas) == 0 {
		return nil, nil
	}
	return &metas[0], nil
}

// Health probes the bytes health endpoint. Health is served unauthenticated.
func (s *Service) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

// WaitReady polls bytes until it is healthy.
func (s *Service) WaitReady(ctx context.Context, attempts int, interval time.Duration) error {
	return s.client.WaitReady(ctx, attempts, interval)
}

// getJSON issues an authenticated GET. A 401 response invalidates the token
// and the request is retried once with a fresh login.
func (s *Service) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	token, err := s.ensureToken(ctx)
	if err != nil {
		return err
	}

	resp, err := s.do(ctx, path, query, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drainAndClose(resp.Body)
		s.logger.Debug("bytes token rejected, logging in again")

		token, err = s.refreshToken(ctx, token)
		if err != nil {
			return err
		}
		resp, err = s.do(ctx, path, query, token)
		if err != nil {
			return err
		}
	}

	return decode(resp, out)
}

func (s *Service) do(ctx context.Context, path string, query url.Values, token string) (*http.Response, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	return s.client.Do(ctx, upstream.RequestSpec{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
		Header: header,
	})
}

// ensureToken returns the cached bearer token, logging in when there is
// none yet.
func (s *Service) ensureToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token, nil
	}
	return s.loginLocked(ctx)
}

// refreshToken replaces a rejected token. When another caller already
// replaced it, the newer token is returned without a second login.
func (s *Service) refreshToken(ctx context.Context, rejected string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.token != rejected {
		return s.token, nil
	}
	s.token = ""
	return s.loginLocked(ctx)
}

// loginLocked performs the form login. The caller holds s.mu.
func (s *Service) loginLocked(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("username", s.username)
	form.Set("password", s.password)

	var tok tokenResponse
	if err := s.client.PostForm(ctx, "/token", form, &tok); err != nil {
		return "", apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "bytes login failed")
	}
	if tok.AccessToken == "" {
		return "", apperrors.Unavailable("bytes login returned an empty token")
	}
	if tok.TokenType != "" && !strings.EqualFold(tok.TokenType, "bearer") {
		return "", apperrors.Unavailablef("bytes login returned unsupported token type %q", tok.TokenType)
	}

	s.token = tok.AccessToken
	return s.token, nil
}

func decode(resp *http.Response, out any) error {
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFoundf("bytes: %s not found", resp.Request.URL.Path)
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Unavailable("bytes rejected credentials")
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return apperrors.Unavailablef("bytes returned status %d for %s", resp.StatusCode, resp.Request.URL.Path)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "decode bytes response")
	}
	return nil
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
