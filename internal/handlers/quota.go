package handlers

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gourl/msid/internal/metrics"
	"github.com/gourl/msid/internal/ratelimit"
)

// CodeRateLimited marks a mint request rejected by the client's quota.
const CodeRateLimited = "RATE_LIMITED"

// IDHandlerOption configures an IDHandler.
type IDHandlerOption func(*IDHandler)

// WithQuota meters minting per client IP. Each request is charged the
// number of identifiers it asks for.
func WithQuota(limiter ratelimit.Limiter) IDHandlerOption {
	return func(h *IDHandler) {
		h.quota = limiter
	}
}

// chargeQuota charges cost identifiers to the caller. It writes the 429
// response and returns false when the quota is exhausted. Limiter errors
// fail open.
func (h *IDHandler) chargeQuota(w http.ResponseWriter, r *http.Request, cost int) bool {
	if h.quota == nil {
		return true
	}

	result, err := h.quota.Allow(r.Context(), "ip:"+clientIP(r), cost)
	if err != nil {
		return true
	}

	setQuotaHeaders(w, result)
	if !result.Allowed {
		metrics.RecordQuotaRejection()
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
			Error: ratelimit.ErrQuotaExceeded.Error(),
			Code:  CodeRateLimited,
		})
		return false
	}
	return true
}

// clientIP extracts the host part of the connection's remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func setQuotaHeaders(w http.ResponseWriter, result *ratelimit.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

	if result.ResetAfter > 0 {
		resetTime := time.Now().Add(result.ResetAfter).Unix()
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime, 10))
	}

	if !result.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(max(int(result.RetryAfter.Seconds()), 1)))
	}
}
