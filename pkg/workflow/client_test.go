package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodalcv/server/pkg/identity"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "server-key", 5*time.Second)
}

var sess = identity.NewBearerSession("alex@example.fr", "user-token")

func TestListProfilesForwardsIdentity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/webhook/cv", r.URL.Path)
		assert.Equal(t, "alex@example.fr", r.URL.Query().Get("email"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.Equal(t, "server-key", r.Header.Get(apiKeyHeader))
		_, _ = w.Write([]byte(`[{"cv_name":"main"}]`))
	})

	out, err := c.ListProfiles(context.Background(), sess)
	require.NoError(t, err)
	list, ok := out.([]any)
	require.True(t, ok)
	assert.Len(t, list, 1)
}

func TestSaveProfileBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webhook/cv/save", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alex@example.fr", body["email"])
		assert.Equal(t, map[string]any{"resume": "x"}, body["cv"])
		_, _ = w.Write([]byte(`{"slug":"alex"}`))
	})

	out, err := c.SaveProfile(context.Background(), sess, map[string]any{"resume": "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"slug": "alex"}, out)
}

func TestParseCVMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "alex@example.fr", r.FormValue("email"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "cv.pdf", hdr.Filename)
		assert.Equal(t, "%PDF", string(data))
		_, _ = w.Write([]byte(`{"data":{"personne":{"prenom":"Alex"}}}`))
	})

	out, err := c.ParseCV(context.Background(), sess, "cv.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.NotNil(t, out)
}

func TestNonSuccessStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	err := c.UpdateSetting(context.Background(), sess, SettingRequest{Field: SettingVisibility, Value: true})
	var herr *HTTPError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, http.StatusBadGateway, herr.Status)
	assert.Equal(t, "upstream down", herr.Body)
}

func TestNonSuccessBodyIsClippedOnRuneBoundary(t *testing.T) {
	// "é" is two bytes and starts at byte 511.
	body := strings.Repeat("a", maxErrorBody-1) + "é" + strings.Repeat("b", 100)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(body))
	})

	err := c.UpdateSetting(context.Background(), sess, SettingRequest{Field: SettingVisibility, Value: true})
	var herr *HTTPError
	require.True(t, errors.As(err, &herr))
	assert.True(t, utf8.ValidString(herr.Body))
	assert.Equal(t, strings.Repeat("a", maxErrorBody-1), herr.Body)
}

func TestRequiresSession(t *testing.T) {
	c := New("http://127.0.0.1:1", "", time.Second)
	_, err := c.ListProfiles(context.Background(), identity.Anonymous())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestPublicProfileIsAnonymous(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "alex", r.URL.Query().Get("slug"))
		_, _ = w.Write([]byte(`not json`))
	})
	out, err := c.PublicProfile(context.Background(), "alex")
	require.NoError(t, err)
	assert.Equal(t, "not json", out)
}

func TestExportPDF(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	})
	data, ct, err := c.ExportPDF(context.Background(), sess, "alex")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)
	assert.Equal(t, "%PDF-1.7", string(data))
}

func TestPing(t *testing.T) {
	ok := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	assert.NoError(t, ok.Ping(context.Background()))

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) })
	assert.Error(t, down.Ping(context.Background()))
}
