package authsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"

	"staybooker/internal/adapters/observability"
	"staybooker/internal/domain"
)

// Client talks to the external auth service. Tokens the service hands out are
// HS256 JWTs signed with a secret shared with this process; claims are
// verified locally before a session is accepted.
type Client struct {
	base   string
	hc     *http.Client
	secret []byte
	rl     *rate.Limiter
}

func New(base, secret string, rps int) (*Client, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth secret is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		hc:     &http.Client{Timeout: 10 * time.Second},
		secret: []byte(secret),
		rl:     rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/sessions", "", bytes.NewReader(body), &out); err != nil {
		return domain.Session{}, err
	}
	return c.parseToken(out.Token)
}

func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/v1/sessions/current", token, nil, nil)
}

func (c *Client) CurrentSession(ctx context.Context, token string) (domain.Session, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodGet, "/v1/sessions/current", token, nil, &out); err != nil {
		return domain.Session{}, err
	}
	return c.parseToken(out.Token)
}

func (c *Client) Refresh(ctx context.Context, token string) (domain.Session, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/sessions/refresh", token, nil, &out); err != nil {
		return domain.Session{}, err
	}
	return c.parseToken(out.Token)
}

// parseToken verifies the HS256 signature and lifts the claims into a Session.
func (c *Client) parseToken(raw string) (domain.Session, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !tok.Valid {
		return domain.Session{}, fmt.Errorf("invalid session token: %w", err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Session{}, fmt.Errorf("invalid session claims")
	}
	s := domain.Session{Token: raw}
	if sub, _ := claims["sub"].(string); sub != "" {
		s.UserID = sub
	} else {
		return domain.Session{}, fmt.Errorf("session token missing sub claim")
	}
	s.Email, _ = claims["email"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	return s, nil
}

// do performs one request with client-side rate limiting and bounded retries
// on 429/5xx. 401 and 404 both mean "no such session" to callers.
func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		payload, _ = io.ReadAll(body)
	}

	var lastErr error
	for i := 0; i < 3; i++ {
		var rd io.Reader
		if payload != nil {
			rd = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 2 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return lastErr
		}
		observability.ObserveExternal("auth", path, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated:
			defer resp.Body.Close()
			if out == nil {
				io.Copy(io.Discard, resp.Body)
				return nil
			}
			return json.NewDecoder(resp.Body).Decode(out)

		case http.StatusNoContent:
			resp.Body.Close()
			return nil

		case http.StatusNotFound, http.StatusUnauthorized:
			resp.Body.Close()
			return domain.ErrNotFound

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			resp.Body.Close()
			lastErr = fmt.Errorf("auth service %d", resp.StatusCode)
			if i < 2 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("auth service %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func backoff(i int) time.Duration {
	return time.Duration(1<<i) * 150 * time.Millisecond
}
