// AngelaMos | 2026
// client_test.go

package recordings

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTwilio struct {
	recordings []Recording
	audio      []byte
	err        error
}

func (f *fakeTwilio) ListForCall(
	_ context.Context,
	_ string,
) ([]Recording, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.recordings, nil
}

func (f *fakeTwilio) StreamAudio(
	_ context.Context,
	_, rangeHeader string,
) (*AudioStream, error) {
	if f.err != nil {
		return nil, f.err
	}

	stream := &AudioStream{
		Body:         io.NopCloser(bytes.NewReader(f.audio)),
		StatusCode:   http.StatusOK,
		AcceptRanges: "bytes",
	}
	if rangeHeader != "" {
		stream.StatusCode = http.StatusPartialContent
		stream.ContentRange = "bytes 0-2/3"
	}

	return stream, nil
}

func newTestRouter(client Client) *chi.Mux {
	h := NewHandler(client, slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	h.RegisterRoutes(r, func(next http.Handler) http.Handler {
		return next
	})
	return r
}

func TestListForCall(t *testing.T) {
	fake := &fakeTwilio{
		recordings: []Recording{
			{
				SID:         "RE123",
				CallSID:     "CA456",
				Duration:    "42",
				DateCreated: "Mon, 22 Jul 2025 03:21:02 +0000",
			},
		},
	}
	router := newTestRouter(fake)

	req := httptest.NewRequest(
		http.MethodGet, "/calls/CA456/recordings", nil,
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"sid":"RE123"`)
	assert.Contains(t, body, `"audio_url":"/v1/recordings/RE123/audio"`)
}

func TestStreamAudio(t *testing.T) {
	fake := &fakeTwilio{audio: []byte("mp3")}
	router := newTestRouter(fake)

	req := httptest.NewRequest(
		http.MethodGet, "/recordings/RE123/audio", nil,
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "mp3", rec.Body.String())
}

func TestStreamAudio_RangePassthrough(t *testing.T) {
	fake := &fakeTwilio{audio: []byte("mp3")}
	router := newTestRouter(fake)

	req := httptest.NewRequest(
		http.MethodGet, "/recordings/RE123/audio", nil,
	)
	req.Header.Set("Range", "bytes=0-2")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 0-2/3", rec.Header().Get("Content-Range"))
}

func TestTwilioClient_ListForCall(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"recordings":[
				{"sid":"RE1","call_sid":"CA1","duration":"10",
				 "date_created":"Mon, 22 Jul 2025 03:21:02 +0000"}
			]}`))
		},
	))
	defer srv.Close()

	client := &TwilioClient{
		accountSID: "AC_test",
		authToken:  "token",
		httpClient: srv.Client(),
	}

	// Point the request at the fake server by rewriting the transport.
	client.httpClient.Transport = rewriteHost(srv)

	recs, err := client.ListForCall(context.Background(), "CA1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "RE1", recs[0].SID)
	assert.NotEmpty(t, gotAuth)
}

func rewriteHost(srv *httptest.Server) http.RoundTripper {
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		req.URL.Scheme = "http"
		req.URL.Host = srv.Listener.Addr().String()
		return http.DefaultTransport.RoundTrip(req)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
