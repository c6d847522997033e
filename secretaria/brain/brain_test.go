package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hatcher/secretaria/pkg/ormx"
	"github.com/hatcher/secretaria/secretaria/contextdoc"
	"github.com/hatcher/secretaria/secretaria/store"
)

type fakeQuerier struct {
	pending []store.Task
	ledger  []store.LedgerEntry
	balance float64
	config  map[string]string
}

func (f *fakeQuerier) CreateTask(ctx context.Context, description string) (store.Task, error) {
	return store.Task{}, nil
}

func (f *fakeQuerier) CompleteTask(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

func (f *fakeQuerier) TaskPending(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

func (f *fakeQuerier) ListPending(ctx context.Context) ([]store.Task, error) {
	return f.pending, nil
}

func (f *fakeQuerier) ListRecent(ctx context.Context, n int) ([]store.Task, error) {
	return f.pending, nil
}

func (f *fakeQuerier) RecordDeferral(ctx context.Context, reason string) error {
	return nil
}

func (f *fakeQuerier) AddLedgerEntry(ctx context.Context, kind store.LedgerKind, description string, amount float64) (store.LedgerEntry, error) {
	return store.LedgerEntry{}, nil
}

func (f *fakeQuerier) GetBalance(ctx context.Context) (float64, error) {
	return f.balance, nil
}

func (f *fakeQuerier) ListRecentLedger(ctx context.Context, n int) ([]store.LedgerEntry, error) {
	return f.ledger, nil
}

func (f *fakeQuerier) GetConfig(ctx context.Context, key string) (string, bool, error) {
	v, ok := f.config[key]
	return v, ok, nil
}

func (f *fakeQuerier) SetConfig(ctx context.Context, key, value string) error {
	if f.config == nil {
		f.config = make(map[string]string)
	}
	f.config[key] = value
	return nil
}

type fakeDoc struct {
	doc contextdoc.Document
}

func (f *fakeDoc) Read(ctx context.Context) (contextdoc.Document, string, error) {
	return f.doc, "", nil
}

// provider is an OpenAI-compatible chat completions endpoint for tests. The
// respond hook sees the decoded request and writes the reply.
type provider struct {
	srv   *httptest.Server
	mu    sync.Mutex
	calls int
	// system and user content of the last request
	lastSystem string
	lastUser   string
}

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newProvider(t *testing.T, status int, content string) *provider {
	t.Helper()
	p := &provider{}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req chatRequest
		_ = json.Unmarshal(body, &req)

		p.mu.Lock()
		p.calls++
		for _, m := range req.Messages {
			switch m.Role {
			case "system":
				p.lastSystem = m.Content
			case "user":
				p.lastUser = m.Content
			}
		}
		p.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error":{"message":"boom"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]interface{}{
						"role":    "assistant",
						"content": content,
					},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *provider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *provider) config(name string) ProviderConfig {
	return ProviderConfig{
		Name:    name,
		BaseURL: p.srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 5,
	}
}

func TestCompleteUsesFirstProvider(t *testing.T) {
	t.Parallel()

	first := newProvider(t, http.StatusOK, "Oi! Bora focar na tarefa 1?")
	second := newProvider(t, http.StatusOK, "nunca deveria chegar aqui")

	c := NewClient(Config{Providers: []ProviderConfig{first.config("a"), second.config("b")}}, &fakeQuerier{}, &fakeDoc{})
	got := c.Complete(context.Background(), "oi", "")

	require.Equal(t, "Oi! Bora focar na tarefa 1?", got)
	require.Equal(t, 1, first.callCount())
	require.Zero(t, second.callCount())
}

func TestCompleteFallsBackOnServerError(t *testing.T) {
	t.Parallel()

	first := newProvider(t, http.StatusInternalServerError, "")
	second := newProvider(t, http.StatusOK, "resposta do reserva")

	c := NewClient(Config{Providers: []ProviderConfig{first.config("a"), second.config("b")}}, &fakeQuerier{}, &fakeDoc{})
	got := c.Complete(context.Background(), "oi", "")

	require.Equal(t, "resposta do reserva", got)
	// The failing provider gets exactly one request; the next provider in
	// the list is the retry, not the same target again.
	require.Equal(t, 1, first.callCount())
	require.Equal(t, 1, second.callCount())
}

func TestCompleteSkipsEmptyOutput(t *testing.T) {
	t.Parallel()

	first := newProvider(t, http.StatusOK, "   \n")
	second := newProvider(t, http.StatusOK, "resposta de verdade")

	c := NewClient(Config{Providers: []ProviderConfig{first.config("a"), second.config("b")}}, &fakeQuerier{}, &fakeDoc{})
	got := c.Complete(context.Background(), "oi", "")

	require.Equal(t, "resposta de verdade", got)
	require.Equal(t, 1, first.callCount())
	require.Equal(t, 1, second.callCount())
}

func TestCompleteApologizesWhenAllFail(t *testing.T) {
	t.Parallel()

	first := newProvider(t, http.StatusInternalServerError, "")
	second := newProvider(t, http.StatusInternalServerError, "")

	c := NewClient(Config{Providers: []ProviderConfig{first.config("a"), second.config("b")}}, &fakeQuerier{}, &fakeDoc{})
	got := c.Complete(context.Background(), "oi", "")

	require.Equal(t, defaultApology, got)
	require.Equal(t, 1, first.callCount())
	require.Equal(t, 1, second.callCount())
}

func TestCompleteApologizesWithoutProviders(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{Apology: "sem cérebro hoje"}, &fakeQuerier{}, &fakeDoc{})
	require.Equal(t, "sem cérebro hoje", c.Complete(context.Background(), "oi", ""))
}

func TestSystemPromptCarriesAssistantState(t *testing.T) {
	t.Parallel()

	reason := "esperando retorno"
	q := &fakeQuerier{
		pending: []store.Task{
			{BaseModel: ormx.BaseModel{ID: 1}, Description: "Ligar pro banco", Status: store.TaskPending},
			{BaseModel: ormx.BaseModel{ID: 2}, Description: "Enviar relatório", Status: store.TaskPending, DeferralReason: &reason},
		},
		ledger: []store.LedgerEntry{
			{Kind: store.KindDebit, Description: "almoço", Amount: 20},
		},
		balance: 1480,
		config:  map[string]string{store.KeyFinancialGoal: "5000.00"},
	}
	doc := &fakeDoc{doc: contextdoc.Document{
		contextdoc.KeyNotas: "prefere mensagens curtas",
		contextdoc.KeyHumor: "animado",
	}}
	p := newProvider(t, http.StatusOK, "ok")

	c := NewClient(Config{Providers: []ProviderConfig{p.config("a")}}, q, doc)
	c.Complete(context.Background(), "como estão as coisas?", "O usuário acabou de adiar as tarefas pendentes com este motivo: cansaço")

	p.mu.Lock()
	system, user := p.lastSystem, p.lastUser
	p.mu.Unlock()

	require.Equal(t, "como estão as coisas?", user)
	require.Contains(t, system, "[1] Ligar pro banco")
	require.Contains(t, system, "(adiada: esperando retorno)")
	require.Contains(t, system, "Saldo atual: R$ 1480.00")
	require.Contains(t, system, "Meta financeira: R$ 5000.00")
	require.Contains(t, system, "-R$ 20.00 almoço")
	require.Contains(t, system, "prefere mensagens curtas")
	require.Contains(t, system, "Contexto adicional: O usuário acabou de adiar as tarefas pendentes com este motivo: cansaço")
}

func TestPersonalityOverrideFromDocument(t *testing.T) {
	t.Parallel()

	doc := &fakeDoc{doc: contextdoc.Document{
		contextdoc.KeyPersonalidade: "Você é um mordomo britânico formal.",
	}}
	p := newProvider(t, http.StatusOK, "ok")

	c := NewClient(Config{Providers: []ProviderConfig{p.config("a")}}, &fakeQuerier{}, doc)
	c.Complete(context.Background(), "oi", "")

	p.mu.Lock()
	system := p.lastSystem
	p.mu.Unlock()
	require.Contains(t, system, "mordomo britânico")
}
