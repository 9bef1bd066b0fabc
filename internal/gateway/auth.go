package gateway

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/soyeahso/assistloop/internal/config"
)

// AuthResult is the outcome of an authentication attempt.
type AuthResult struct {
	OK     bool   `json:"ok"`
	Method string `json:"method,omitempty"` // "token" | "password"
	Reason string `json:"reason,omitempty"`
}

// ResolvedAuth is the admin credential the gateway checks against.
type ResolvedAuth struct {
	Mode     string
	Token    string
	Password string
}

// ResolveAuth fills credentials from config, then from
// ASSISTLOOP_GATEWAY_TOKEN / ASSISTLOOP_GATEWAY_PASSWORD. An empty mode
// becomes "password" when only a password is known, else "token".
func ResolveAuth(cfg config.GatewayAuth) ResolvedAuth {
	auth := ResolvedAuth{
		Mode:     cfg.Mode,
		Token:    cfg.Token,
		Password: cfg.Password,
	}
	if auth.Token == "" {
		auth.Token = os.Getenv("ASSISTLOOP_GATEWAY_TOKEN")
	}
	if auth.Password == "" {
		auth.Password = os.Getenv("ASSISTLOOP_GATEWAY_PASSWORD")
	}

	if auth.Mode == "" {
		if auth.Password != "" && auth.Token == "" {
			auth.Mode = "password"
		} else {
			auth.Mode = "token"
		}
	}
	return auth
}

// Authorize checks client credentials against the server's.
func Authorize(serverAuth ResolvedAuth, clientAuth *ConnectAuth) AuthResult {
	if clientAuth == nil {
		return AuthResult{Reason: "no credentials provided"}
	}

	switch serverAuth.Mode {
	case "token":
		return checkSecret("token", serverAuth.Token, clientAuth.Token)
	case "password":
		return checkSecret("password", serverAuth.Password, clientAuth.Password)
	default:
		return AuthResult{Reason: "unknown auth mode: " + serverAuth.Mode}
	}
}

func checkSecret(method, want, got string) AuthResult {
	switch {
	case want == "":
		return AuthResult{Reason: "server " + method + " not configured"}
	case got == "":
		return AuthResult{Reason: method + " required"}
	case !safeEqual(got, want):
		return AuthResult{Reason: method + "_mismatch"}
	}
	return AuthResult{OK: true, Method: method}
}

// bearerAuth reads "Authorization: Bearer <secret>". The secret is offered
// as both token and password so either auth mode can use the header.
func bearerAuth(r *http.Request) *ConnectAuth {
	h := r.Header.Get("Authorization")
	scheme, secret, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return nil
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil
	}
	return &ConnectAuth{Token: secret, Password: secret}
}

// requireAdmin guards an admin HTTP handler with bearer auth and the
// shared failure rate limit.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authLimiter.allow(r.RemoteAddr) {
			writeError(w, http.StatusTooManyRequests, "too many failed auth attempts")
			return
		}
		res := Authorize(s.auth, bearerAuth(r))
		if !res.OK {
			s.authLimiter.recordFailure(r.RemoteAddr)
			s.log.Warn().Str("remote", r.RemoteAddr).Str("reason", res.Reason).Msg("admin request rejected")
			w.Header().Set("WWW-Authenticate", `Bearer realm="assistloop"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// safeEqual compares the SHA-256 digests of a and b in constant time, so
// the comparison takes the same path whatever the input lengths.
func safeEqual(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
