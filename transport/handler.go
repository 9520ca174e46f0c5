package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hybridcrypt/hybridcrypt/auth"
	"github.com/hybridcrypt/hybridcrypt/crypto"
	"github.com/hybridcrypt/hybridcrypt/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	RequestIDHeader     = "X-Request-Id"
	AuthorizationHeader = "Authorization"

	EncryptRoute   = "/v1/encrypt"
	DecryptRoute   = "/v1/decrypt"
	PublicKeyRoute = "/v1/public-key"
	HealthRoute    = "/healthz"
)

// Error kinds produced by the transport itself, alongside crypto.ErrorKind.
const (
	KindBadRequest       crypto.ErrorKind = "bad_request"
	KindUnauthenticated  crypto.ErrorKind = "unauthenticated"
	KindMethodNotAllowed crypto.ErrorKind = "method_not_allowed"
)

type (
	// TextCipher is the codec surface the HTTP handler needs.
	TextCipher interface {
		Encrypt(ctx context.Context, plainText string) (string, error)
		Decrypt(ctx context.Context, cipherText string) (string, error)
	}

	// RequestAuthenticator is satisfied by *auth.AuthManager.
	RequestAuthenticator interface {
		Authenticate(ctx context.Context, name string, credentials interface{}) (*auth.AuthenticationResult, error)
	}

	HandlerOptions struct {
		Codec   TextCipher
		KeyInfo crypto.KeyInfo
		// Auth is consulted for /v1/* routes when AuthType is set.
		Auth           RequestAuthenticator
		AuthType       string
		MaxBodyBytes   int64
		Logger         *zap.Logger
		MetricsHandler *metrics.MetricsHandler
	}

	TextRequest struct {
		Text string `json:"text"`
	}

	TextResponse struct {
		Text string `json:"text"`
	}

	PublicKeyResponse struct {
		Fingerprint       string `json:"fingerprint"`
		Scheme            string `json:"scheme"`
		MaxPlaintextBytes int    `json:"max_plaintext_bytes"`
		PublicKeyPEM      string `json:"public_key_pem"`
	}

	ErrorResponse struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}

	handler struct {
		opts HandlerOptions
		mux  *http.ServeMux
	}

	// statusRecorder captures the status code written by a route.
	statusRecorder struct {
		http.ResponseWriter
		status int
	}
)

// NewHandler returns the HTTP API served by the transport.
func NewHandler(opts HandlerOptions) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MetricsHandler == nil {
		opts.MetricsHandler = metrics.NewNopMetricsHandler()
	}

	h := &handler{opts: opts, mux: http.NewServeMux()}
	h.mux.HandleFunc(EncryptRoute, h.protected(http.MethodPost, h.encrypt))
	h.mux.HandleFunc(DecryptRoute, h.protected(http.MethodPost, h.decrypt))
	h.mux.HandleFunc(PublicKeyRoute, h.protected(http.MethodGet, h.publicKey))
	h.mux.HandleFunc(HealthRoute, h.method(http.MethodGet, h.health))

	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()
	w.Header().Set(RequestIDHeader, requestID)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(rec, r)

	elapsed := time.Since(start)
	route := routeLabel(r.URL.Path)
	h.opts.MetricsHandler.Counter(metrics.HTTPRequests).Inc(1,
		attribute.String(metrics.AttributeRoute, route),
		attribute.Int(metrics.AttributeStatus, rec.status),
	)
	h.opts.MetricsHandler.Timer(metrics.HTTPLatency).Record(elapsed,
		attribute.String(metrics.AttributeRoute, route),
	)

	h.opts.Logger.Info("request",
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("route", route),
		zap.Int("status", rec.status),
		zap.Duration("elapsed", elapsed),
	)
}

func (h *handler) method(allowed string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != allowed {
			w.Header().Set("Allow", allowed)
			writeError(w, http.StatusMethodNotAllowed, KindMethodNotAllowed, "method not allowed")
			return
		}
		next(w, r)
	}
}

func (h *handler) protected(allowed string, next http.HandlerFunc) http.HandlerFunc {
	return h.method(allowed, func(w http.ResponseWriter, r *http.Request) {
		if h.opts.AuthType == "" || h.opts.Auth == nil {
			next(w, r)
			return
		}

		credentials := r.Header.Get(AuthorizationHeader)
		if credentials == "" {
			writeError(w, http.StatusUnauthorized, KindUnauthenticated, "missing authorization header")
			return
		}

		result, err := h.opts.Auth.Authenticate(r.Context(), h.opts.AuthType, credentials)
		if err != nil || result == nil || !result.Authenticated {
			h.opts.Logger.Debug("authentication failed",
				zap.String("request_id", w.Header().Get(RequestIDHeader)),
				zap.Error(err),
			)
			writeError(w, http.StatusUnauthorized, KindUnauthenticated, "authentication failed")
			return
		}

		next(w, r)
	})
}

func (h *handler) encrypt(w http.ResponseWriter, r *http.Request) {
	h.transform(w, r, h.opts.Codec.Encrypt)
}

func (h *handler) decrypt(w http.ResponseWriter, r *http.Request) {
	h.transform(w, r, h.opts.Codec.Decrypt)
}

func (h *handler) transform(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (string, error)) {
	var req TextRequest
	if h.opts.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, crypto.KindInputTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, KindBadRequest, "invalid JSON body")
		return
	}

	out, err := fn(r.Context(), req.Text)
	if err != nil {
		kind := crypto.Kind(err)
		writeError(w, statusForKind(kind), kind, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, TextResponse{Text: out})
}

func (h *handler) publicKey(w http.ResponseWriter, _ *http.Request) {
	info := h.opts.KeyInfo
	writeJSON(w, http.StatusOK, PublicKeyResponse{
		Fingerprint:       info.Fingerprint,
		Scheme:            string(info.Scheme),
		MaxPlaintextBytes: info.MaxPlaintextBytes,
		PublicKeyPEM:      info.PublicKeyPEM,
	})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusForKind(kind crypto.ErrorKind) int {
	switch kind {
	case crypto.KindEmptyInput, crypto.KindMalformedCiphertext, KindBadRequest:
		return http.StatusBadRequest
	case crypto.KindInputTooLarge:
		return http.StatusRequestEntityTooLarge
	case crypto.KindDecryptionIntegrity:
		return http.StatusUnprocessableEntity
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// routeLabel keeps metric cardinality bounded for unknown paths.
func routeLabel(path string) string {
	switch path {
	case EncryptRoute, DecryptRoute, PublicKeyRoute, HealthRoute:
		return path
	default:
		return "other"
	}
}

func writeError(w http.ResponseWriter, status int, kind crypto.ErrorKind, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Kind: string(kind)})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
