package httpapi

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/fieldops/internal/cache"
	"github.com/joseph-ayodele/fieldops/internal/common"
)

const (
	HeaderRequestID  = "X-Request-ID"
	HeaderEmployeeID = "X-Employee-ID"
)

type Middleware func(http.Handler) http.Handler

func Chain(handler http.Handler, middleware ...Middleware) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}
	return handler
}

func SecurityHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}

// RequestContext assigns a request id, attaches a request-scoped logger and
// records the acting employee from the X-Employee-ID header.
func RequestContext(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if id == "" || len(id) > 64 {
				id = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, id)

			ctx := common.WithRequestID(r.Context(), id)
			reqLogger := logger.With("request_id", id)
			if emp := strings.TrimSpace(r.Header.Get(HeaderEmployeeID)); emp != "" {
				ctx = common.WithEmployeeID(ctx, emp)
				reqLogger = reqLogger.With("employee_id", emp)
			}
			ctx = common.WithLogger(ctx, reqLogger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// AccessLog logs one line per request.
func AccessLog(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			common.LoggerFromContext(r.Context(), logger).Info("http.request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.bytes,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// Recover turns a panic into a 500 response.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					common.LoggerFromContext(r.Context(), logger).Error("panic serving request",
						"panic", fmt.Sprint(v),
						"stack", string(debug.Stack()),
					)
					writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit allows cfg.Max requests per client and path in each cfg.Window.
// A nil cache or non-positive Max disables it.
func RateLimit(c *cache.Service, cfg common.RateLimitConfig) Middleware {
	return func(next http.Handler) http.Handler {
		if c == nil || cfg.Max <= 0 || cfg.Window <= 0 {
			return next
		}
		proxies := newProxySet(cfg.TrustedProxies)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + proxies.clientIP(r) + ":" + r.URL.Path
			win := c.Increment(key, cfg.Window)
			remaining := cfg.Max - win.Count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if win.Count > cfg.Max {
				retry := int(time.Until(win.ResetAt).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type proxySet []netip.Prefix

// newProxySet skips malformed entries; Config.Validate reports them.
func newProxySet(entries []string) proxySet {
	var out proxySet
	for _, e := range entries {
		if p, err := common.ParseIPPrefix(e); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func (ps proxySet) trusted(addr netip.Addr) bool {
	for _, p := range ps {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientIP is the peer address unless the peer is a trusted proxy. Then the
// X-Forwarded-For chain is walked right to left and the first hop that is not
// itself a trusted proxy wins.
func (ps proxySet) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !ps.trusted(peer.Unmap()) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		addr, err := netip.ParseAddr(hop)
		if err != nil {
			// garbage from an untrusted hop: stop at the last address we trust
			break
		}
		if !ps.trusted(addr.Unmap()) {
			return addr.Unmap().String()
		}
		host = addr.Unmap().String()
	}
	return host
}
