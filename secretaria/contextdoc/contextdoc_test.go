package contextdoc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// docServer emulates the remote document store: base64 JSON content plus an
// opaque token renewed on every write. Writes are accepted unconditionally,
// matching the backend's create-or-overwrite contract.
type docServer struct {
	mu      sync.Mutex
	content string
	token   string
	writes  int
	// token value received on the last PUT
	lastWriteToken string
}

func (d *docServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /doc", func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.content == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"content": d.content,
			"token":   d.token,
		})
	})
	mux.HandleFunc("PUT /doc", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Content string `json:"content"`
			Token   string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		d.content = payload.Content
		d.lastWriteToken = payload.Token
		d.writes++
		d.token = fmt.Sprintf("v%d", d.writes)
		json.NewEncoder(w).Encode(map[string]string{"token": d.token})
	})
	return mux
}

func newTestClient(t *testing.T) (*Client, *docServer) {
	t.Helper()
	ds := &docServer{}
	srv := httptest.NewServer(ds.handler())
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL, Path: "/doc", Timeout: 5})
	return c, ds
}

func TestReadMissingDocument(t *testing.T) {
	t.Parallel()

	ds := &docServer{}
	srv := httptest.NewServer(ds.handler())
	t.Cleanup(srv.Close)
	// No timeout configured: the client falls back to its default.
	c := NewClient(Config{BaseURL: srv.URL, Path: "/doc"})

	doc, token, err := c.Read(context.Background())
	require.NoError(t, err)
	require.Empty(t, doc)
	require.Empty(t, token)
}

func TestWriteThenRead(t *testing.T) {
	t.Parallel()

	c, ds := newTestClient(t)
	ctx := context.Background()

	err := c.Write(ctx, Document{KeyNotas: "lembrar do dentista"}, "")
	require.NoError(t, err)

	doc, token, err := c.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, "lembrar do dentista", doc[KeyNotas])
	require.Equal(t, "v1", token)

	// The stored content really is base64(json).
	raw, err := base64.StdEncoding.DecodeString(ds.content)
	require.NoError(t, err)
	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Equal(t, "lembrar do dentista", stored[KeyNotas])
}

func TestWritePassesTokenThrough(t *testing.T) {
	t.Parallel()

	c, ds := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Write(ctx, Document{KeyHumor: "animado"}, ""))
	_, token, err := c.Read(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Write(ctx, Document{KeyHumor: "cansado"}, token))
	ds.mu.Lock()
	defer ds.mu.Unlock()
	require.Equal(t, token, ds.lastWriteToken)
}

func TestUpdateKeyStampsTimestamp(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }
	ctx := context.Background()

	c.UpdateKey(ctx, KeySaldoInicial, 1500.0)

	doc, _, err := c.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, 1500.0, doc[KeySaldoInicial])
	require.Equal(t, fixed.Format(time.RFC3339), doc[KeyUltimaAtualizacao])
}

func TestUpdateKeyPreservesOtherKeys(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Write(ctx, Document{KeyObjetivos: "guardar 10k"}, ""))
	c.UpdateKey(ctx, KeyUltimoMotivoAdiamento, "muito cansado hoje")

	doc, _, err := c.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, "guardar 10k", doc[KeyObjetivos])
	require.Equal(t, "muito cansado hoje", doc[KeyUltimoMotivoAdiamento])
}

func TestUpdateKeySwallowsBackendFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL, Path: "/doc", Timeout: 2})

	// Must not panic or surface an error to the caller.
	c.UpdateKey(context.Background(), KeyNotas, "qualquer coisa")
}

// Pins the lost-update failure mode: writes never verify the token is still
// current, so a concurrent writer's change is silently overwritten. The core
// runs single-writer, where this is safe.
func TestConcurrentWritersLastWriterWins(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Write(ctx, Document{KeyNotas: "original"}, ""))
	_, staleToken, err := c.Read(ctx)
	require.NoError(t, err)

	// Another writer lands first.
	require.NoError(t, c.Write(ctx, Document{KeyNotas: "do outro escritor"}, staleToken))

	// Our write still uses the stale token and is accepted anyway.
	require.NoError(t, c.Write(ctx, Document{KeyNotas: "sobrescrito"}, staleToken))

	doc, _, err := c.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, "sobrescrito", doc[KeyNotas])
}
