package submission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/internal/httputil"
	"github.com/goliatone/go-formflow/pkg/formmodel"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func envelope() formmodel.Envelope {
	return formmodel.Envelope{
		ApplicationID: uuid.MustParse("0d6b7c52-3f5e-4e0f-9a53-8a0b9b7e6a11"),
		FormID:        "awards-for-all",
		Environment:   "test",
		Locale:        "en",
		StartedAt:     time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC),
		Payload:       map[string]any{"projectName": "Tents"},
	}
}

func TestSubmitPostsEnvelope(t *testing.T) {
	var got formmodel.Envelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "0d6b7c52-3f5e-4e0f-9a53-8a0b9b7e6a11", r.Header.Get("Idempotency-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"reference":"AFA-0001"}`))
	}))
	defer srv.Close()

	receipt, err := New(srv.URL, WithToken("secret")).Submit(context.Background(), envelope())
	require.NoError(t, err)

	assert.Equal(t, "AFA-0001", receipt.Reference)
	assert.Equal(t, http.StatusCreated, receipt.Status)
	assert.Equal(t, "awards-for-all", got.FormID)
	assert.Equal(t, "Tents", got.Payload["projectName"])
}

func TestSubmitRetriesThrottledRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	receipt, err := New(srv.URL, WithMaxRetries(2)).Submit(context.Background(), envelope())
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, receipt.Status)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSubmitClassifiesFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		rejected bool
	}{
		{"validation error", http.StatusUnprocessableEntity, true},
		{"server error", http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			_, err := New(srv.URL).Submit(context.Background(), envelope())
			require.Error(t, err)
			assert.Equal(t, tt.rejected, errors.Is(err, ErrRejected))
		})
	}
}

func TestSubmitWithoutEndpoint(t *testing.T) {
	_, err := New(" ").Submit(context.Background(), envelope())
	require.ErrorIs(t, err, ErrNoEndpoint)
}
