package brain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/hatcher/secretaria/pkg/logs"
	"github.com/hatcher/secretaria/secretaria/contextdoc"
	"github.com/hatcher/secretaria/secretaria/store"
)

const defaultApology = "Desculpa, não consegui pensar em uma resposta agora. Tenta de novo daqui a pouco? 💙"

const defaultPersonality = "Você é uma secretária pessoal acolhedora e direta. " +
	"Responda em português, em poucas frases, sempre puxando o usuário de volta " +
	"para a tarefa mais importante do dia."

// ProviderConfig describes one completion provider. Providers are tried in
// configuration order; the order is a priority list, not a rotation.
type ProviderConfig struct {
	Name      string `json:"name" yaml:"name" mapstructure:"name"`
	BaseURL   string `json:"baseUrl" yaml:"base-url" mapstructure:"base-url"`
	APIKey    string `json:"apiKey" yaml:"api-key" mapstructure:"api-key"`
	Model     string `json:"model" yaml:"model" mapstructure:"model"`
	MaxTokens int64  `json:"maxTokens" yaml:"max-tokens" mapstructure:"max-tokens"`
	Timeout   int    `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

type Config struct {
	Providers    []ProviderConfig `json:"providers" yaml:"providers" mapstructure:"providers"`
	LedgerWindow int              `json:"ledgerWindow" yaml:"ledger-window" mapstructure:"ledger-window"`
	Apology      string           `json:"apology" yaml:"apology" mapstructure:"apology"`
}

// DocReader is the slice of the context-document client the prompt builder
// needs.
type DocReader interface {
	Read(ctx context.Context) (contextdoc.Document, string, error)
}

// Client answers free-form messages by calling an ordered list of
// OpenAI-compatible completion providers, returning the first non-empty
// output.
type Client struct {
	cfg     Config
	querier store.Querier
	doc     DocReader
}

func NewClient(cfg Config, querier store.Querier, doc DocReader) *Client {
	if cfg.LedgerWindow <= 0 {
		cfg.LedgerWindow = 5
	}
	if cfg.Apology == "" {
		cfg.Apology = defaultApology
	}
	return &Client{cfg: cfg, querier: querier, doc: doc}
}

// Complete builds the system prompt from current assistant state and walks
// the provider list. It never returns an error: when every provider fails it
// answers with the fixed apology.
func (c *Client) Complete(ctx context.Context, userMessage, extraContext string) string {
	systemPrompt := c.buildSystemPrompt(ctx, extraContext)

	for _, p := range c.cfg.Providers {
		output, err := c.callProvider(ctx, p, systemPrompt, userMessage)
		if err != nil {
			logs.Warnf("[brain] provider %s failed: %v", p.Name, err)
			continue
		}
		if strings.TrimSpace(output) == "" {
			logs.Warnf("[brain] provider %s returned empty output", p.Name)
			continue
		}
		return output
	}
	return c.cfg.Apology
}

func (c *Client) callProvider(ctx context.Context, p ProviderConfig, systemPrompt, userMessage string) (string, error) {
	timeout := time.Duration(p.Timeout) * time.Second
	if p.Timeout == 0 {
		timeout = 30 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// One request per provider; falling to the next provider is the only
	// retry policy.
	opts := []option.RequestOption{
		option.WithAPIKey(p.APIKey),
		option.WithMaxRetries(0),
	}
	if p.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.BaseURL))
	}
	client := openai.NewClient(opts...)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage),
		},
	}
	if p.MaxTokens > 0 {
		params.MaxTokens = openai.Int(p.MaxTokens)
	}
	completion, err := client.Chat.Completions.New(callCtx, params)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *Client) buildSystemPrompt(ctx context.Context, extraContext string) string {
	var b strings.Builder

	doc := contextdoc.Document{}
	if c.doc != nil {
		if d, _, err := c.doc.Read(ctx); err != nil {
			logs.Warnf("[brain] context document unavailable: %v", err)
		} else {
			doc = d
		}
	}

	personality := docString(doc, contextdoc.KeyPersonalidade)
	if personality == "" {
		personality = defaultPersonality
	}
	b.WriteString(personality)
	b.WriteString("\n\n")

	if pending, err := c.querier.ListPending(ctx); err != nil {
		logs.Warnf("[brain] listing pending tasks failed: %v", err)
	} else if len(pending) > 0 {
		b.WriteString("Tarefas pendentes:\n")
		for _, t := range pending {
			b.WriteString(fmt.Sprintf("- [%d] %s", t.ID, t.Description))
			if t.DeferralReason != nil && *t.DeferralReason != "" {
				b.WriteString(fmt.Sprintf(" (adiada: %s)", *t.DeferralReason))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Nenhuma tarefa pendente.\n\n")
	}

	if balance, err := c.querier.GetBalance(ctx); err != nil {
		logs.Warnf("[brain] computing balance failed: %v", err)
	} else {
		b.WriteString(fmt.Sprintf("Saldo atual: R$ %.2f\n", balance))
	}
	if goal, ok, err := c.querier.GetConfig(ctx, store.KeyFinancialGoal); err == nil && ok {
		b.WriteString(fmt.Sprintf("Meta financeira: R$ %s\n", goal))
	}

	if entries, err := c.querier.ListRecentLedger(ctx, c.cfg.LedgerWindow); err != nil {
		logs.Warnf("[brain] listing ledger failed: %v", err)
	} else if len(entries) > 0 {
		b.WriteString("Últimos lançamentos:\n")
		for _, e := range entries {
			sign := "-"
			if e.Kind == store.KindCredit {
				sign = "+"
			}
			b.WriteString(fmt.Sprintf("- %sR$ %.2f %s\n", sign, e.Amount, e.Description))
		}
	}

	for _, key := range []string{contextdoc.KeyNotas, contextdoc.KeyHumor, contextdoc.KeyObjetivos} {
		if v := docString(doc, key); v != "" {
			b.WriteString(fmt.Sprintf("%s: %s\n", key, v))
		}
	}

	if extraContext != "" {
		b.WriteString("\nContexto adicional: ")
		b.WriteString(extraContext)
		b.WriteString("\n")
	}
	return b.String()
}

func docString(doc contextdoc.Document, key string) string {
	if doc == nil {
		return ""
	}
	if v, ok := doc[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
