package contextdoc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/hatcher/secretaria/pkg/httpx"
	"github.com/hatcher/secretaria/pkg/logs"
)

// Reserved document keys mirrored from local state.
const (
	KeyNotas                 = "notas"
	KeyHumor                 = "humor"
	KeyObjetivos             = "objetivos"
	KeyPersonalidade         = "personalidade"
	KeySaldoInicial          = "saldo_inicial"
	KeyMetaFinanceira        = "meta_financeira"
	KeyUltimaAtualizacao     = "ultima_atualizacao"
	KeyUltimoLancamento      = "ultimo_lancamento"
	KeyUltimoMotivoAdiamento = "ultimo_motivo_adiamento"
)

// Document is the shared remote context blob.
type Document map[string]interface{}

type Config struct {
	BaseURL string `json:"baseUrl" yaml:"base-url" mapstructure:"base-url"`
	Path    string `json:"path" yaml:"path" mapstructure:"path"`
	APIKey  string `json:"apiKey" yaml:"api-key" mapstructure:"api-key"`
	Timeout int    `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Client synchronizes the remote context document. The backend stores the
// JSON base64-encoded together with an opaque version token per write.
type Client struct {
	http   *httpx.Client
	path   string
	apiKey string
	now    func() time.Time
}

type documentPayload struct {
	Content string `json:"content"`
	Token   string `json:"token,omitempty"`
}

func NewClient(cfg Config) *Client {
	hc := httpx.NewDefaultClient(cfg.BaseURL)
	if cfg.Timeout > 0 {
		hc = httpx.NewClient(cfg.BaseURL, time.Duration(cfg.Timeout)*time.Second)
	}
	return &Client{
		http:   hc,
		path:   cfg.Path,
		apiKey: cfg.APIKey,
		now:    time.Now,
	}
}

func (c *Client) headers() map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	if c.apiKey != "" {
		h["X-Api-Key"] = c.apiKey
	}
	return h
}

// Read fetches the current document and its version token. A missing
// document yields an empty document and an empty token.
func (c *Client) Read(ctx context.Context) (Document, string, error) {
	resp, err := c.http.Do(ctx, httpx.NewRequestOption(
		httpx.WithMethodGet(),
		httpx.WithPath(c.path),
		httpx.WithHeaders(c.headers()),
	))
	if err != nil {
		return nil, "", errors.WithMessage(err, "read context document error")
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return Document{}, "", nil
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", errors.Errorf("read context document: unexpected status %d", resp.StatusCode)
	}

	var payload documentPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, "", errors.WithMessage(err, "decode context document error")
	}
	if payload.Content == "" {
		return Document{}, payload.Token, nil
	}
	raw, err := base64.StdEncoding.DecodeString(payload.Content)
	if err != nil {
		return nil, "", errors.WithMessage(err, "decode context document content error")
	}
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, "", errors.WithMessage(err, "unmarshal context document error")
	}
	return doc, payload.Token, nil
}

// Write persists the document, passing the token from the read it is based
// on. The backend's conflict signal is not inspected: the last writer wins.
// Safe only under the single-process-writer assumption.
func (c *Client) Write(ctx context.Context, doc Document, token string) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.WithMessage(err, "marshal context document error")
	}
	err = c.http.DoWithPtr(ctx, httpx.NewRequestOption(
		httpx.WithMethodPut(),
		httpx.WithPath(c.path),
		httpx.WithHeaders(c.headers()),
		httpx.WithBody(documentPayload{
			Content: base64.StdEncoding.EncodeToString(raw),
			Token:   token,
		}),
	), &documentPayload{})
	return errors.WithMessage(err, "write context document error")
}

// UpdateKey reads the document, sets key plus the update timestamp and
// writes it back with the token from the same read. Failures are logged and
// swallowed; callers treat the mirror as fire-and-forget.
func (c *Client) UpdateKey(ctx context.Context, key string, value interface{}) {
	doc, token, err := c.Read(ctx)
	if err != nil {
		logs.Warnf("[contextdoc] skipping mirror of %s: %v", key, err)
		return
	}
	doc[key] = value
	doc[KeyUltimaAtualizacao] = c.now().Format(time.RFC3339)
	if err := c.Write(ctx, doc, token); err != nil {
		logs.Warnf("[contextdoc] skipping mirror of %s: %v", key, err)
	}
}
