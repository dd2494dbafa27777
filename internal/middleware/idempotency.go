package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/josh-kwaku/bank-backoffice/internal/handler"
	"github.com/josh-kwaku/bank-backoffice/internal/logging"
	"github.com/josh-kwaku/bank-backoffice/internal/repository"
)

type idempotencyRepository interface {
	Get(ctx context.Context, key string) (*repository.IdempotencyCacheEntry, error)
	Reserve(ctx context.Context, key, requestHash string, ttl time.Duration) (bool, error)
	Complete(ctx context.Context, entry *repository.IdempotencyCacheEntry) error
	Release(ctx context.Context, key string) error
}

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
	// pendingTTL bounds how long a crashed request can hold its key.
	pendingTTL   = time.Minute
	maxKeyLength = 255
)

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Requests without the header pass through. The key is reserved in the shared
// cache before the handler runs, so a duplicate arriving at any instance while
// the first is in flight is refused. Responses of 500 and above release the
// reservation so a retry runs again.
func Idempotency(repo idempotencyRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotencyHeader)
			if key == "" || r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxKeyLength {
				handler.RespondValidationError(w, []handler.FieldError{
					{Field: idempotencyHeader, Message: fmt.Sprintf("must be at most %d characters", maxKeyLength)},
				})
				return
			}
			log := logging.FromContext(r.Context()).With("idempotency_key", key)

			body, err := io.ReadAll(r.Body)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidRequest, nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			reqHash := computeHash(r.Method, r.URL.Path, body)

			cached, err := repo.Get(r.Context(), key)
			if err != nil {
				log.Error("idempotency cache lookup failed", "error", err)
				handler.RespondDomainError(w, err)
				return
			}

			if cached != nil {
				if cached.RequestHash != reqHash {
					handler.RespondAppError(w, handler.ErrIdempotencyConflict, nil)
					return
				}
				if cached.Pending() {
					handler.RespondAppError(w, handler.ErrIdempotencyBusy, nil)
					return
				}

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Idempotent-Replayed", "true")
				w.WriteHeader(cached.StatusCode)
				if _, err := w.Write(cached.ResponseBody); err != nil {
					log.Error("failed to write idempotent replay", "error", err)
				}
				return
			}

			reserved, err := repo.Reserve(r.Context(), key, reqHash, pendingTTL)
			if err != nil {
				log.Error("idempotency reservation failed", "error", err)
				handler.RespondDomainError(w, err)
				return
			}
			if !reserved {
				handler.RespondAppError(w, handler.ErrIdempotencyBusy, nil)
				return
			}

			// The request context may be gone by the time the cache is written.
			storeCtx := context.WithoutCancel(r.Context())
			keep := false
			defer func() {
				if keep {
					return
				}
				if err := repo.Release(storeCtx, key); err != nil {
					log.Error("idempotency release failed", "error", err)
				}
			}()

			rec := &responseRecorder{ResponseWriter: w, body: &bytes.Buffer{}, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.statusCode >= http.StatusInternalServerError {
				return
			}
			// A failed Complete leaves the reservation pending until it
			// expires rather than letting a retry apply the request again.
			keep = true

			entry := &repository.IdempotencyCacheEntry{
				Key:          key,
				RequestHash:  reqHash,
				StatusCode:   rec.statusCode,
				ResponseBody: rec.body.Bytes(),
				ExpiresAt:    time.Now().UTC().Add(idempotencyTTL),
			}
			if err := repo.Complete(storeCtx, entry); err != nil {
				log.Error("idempotency cache store failed", "error", err)
			}
		})
	}
}

func computeHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return fmt.Sprintf("%x", h.Sum(nil))
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
