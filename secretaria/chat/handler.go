package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hatcher/secretaria/pkg/logs"
	"github.com/hatcher/secretaria/secretaria/contextdoc"
	"github.com/hatcher/secretaria/secretaria/intent"
	"github.com/hatcher/secretaria/secretaria/session"
	"github.com/hatcher/secretaria/secretaria/store"
)

// Sender delivers a message to a chat. It is the only transport-level
// action the core ever takes.
type Sender interface {
	Send(chatID int64, text string) error
}

// Completer answers free-form messages; it degrades internally and never
// fails.
type Completer interface {
	Complete(ctx context.Context, userMessage, extraContext string) string
}

// Mirror pushes a key into the remote context document, fire-and-forget.
type Mirror interface {
	UpdateKey(ctx context.Context, key string, value interface{})
}

// Nagger is the slice of the reminder scheduler the conversation needs.
type Nagger interface {
	ArmNag(taskID, chatID int64, description string)
	CancelNags(taskID int64)
	ArmCheckin(chatID int64, fire func(chatID int64)) error
	ArmMorning(chatID int64, fire func(chatID int64)) error
}

// Affirmative tokens that count as "yes, I'm working on it" during a
// check-in.
var workingTokens = []string{"sim", "estou", "to", "tô", "trabalhando", "fazendo"}

// Handler routes every inbound message: structured commands directly,
// free text through the per-chat conversation state machine.
type Handler struct {
	querier  store.Querier
	sessions *session.Store
	sched    Nagger
	brain    Completer
	mirror   Mirror
	sender   Sender

	mu        sync.Mutex
	chatLocks map[int64]*sync.Mutex
}

func NewHandler(querier store.Querier, sessions *session.Store, sched Nagger, brain Completer, mirror Mirror, sender Sender) *Handler {
	return &Handler{
		querier:   querier,
		sessions:  sessions,
		sched:     sched,
		brain:     brain,
		mirror:    mirror,
		sender:    sender,
		chatLocks: make(map[int64]*sync.Mutex),
	}
}

// lockChat serializes handlers of the same chat; handlers for different
// chats may interleave.
func (h *Handler) lockChat(chatID int64) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	lock, ok := h.chatLocks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		h.chatLocks[chatID] = lock
	}
	return lock
}

func (h *Handler) send(chatID int64, text string) {
	if err := h.sender.Send(chatID, text); err != nil {
		logs.Errorf("[chat] send to %d failed: %v", chatID, err)
	}
}

// HandleText routes inbound free text through the conversation state
// machine. Exactly one state transition happens per message.
func (h *Handler) HandleText(ctx context.Context, chatID int64, text string) {
	lock := h.lockChat(chatID)
	lock.Lock()
	defer lock.Unlock()

	switch h.sessions.Get(chatID) {
	case session.AwaitingInitialBalance:
		h.handleInitialBalance(ctx, chatID, text)
	case session.AwaitingFinancialGoal:
		h.handleFinancialGoal(ctx, chatID, text)
	case session.AwaitingCheckinResponse:
		h.handleCheckinResponse(ctx, chatID, text)
	default:
		h.handleIdle(ctx, chatID, text)
	}
}

func (h *Handler) handleInitialBalance(ctx context.Context, chatID int64, text string) {
	amount, ok := intent.ParseAmount(text)
	if !ok {
		h.send(chatID, msgReprompNumber)
		return
	}
	value := strconv.FormatFloat(amount, 'f', 2, 64)
	if err := h.querier.SetConfig(ctx, store.KeyInitialBalance, value); err != nil {
		logs.Errorf("[chat] saving initial balance failed: %v", err)
		h.send(chatID, msgSomethingWrong)
		return
	}
	h.mirror.UpdateKey(ctx, contextdoc.KeySaldoInicial, amount)
	h.sessions.Set(chatID, session.AwaitingFinancialGoal)
	h.send(chatID, msgAskFinancialGoal)
}

func (h *Handler) handleFinancialGoal(ctx context.Context, chatID int64, text string) {
	amount, ok := intent.ParseAmount(text)
	if !ok {
		h.send(chatID, msgReprompNumber)
		return
	}
	value := strconv.FormatFloat(amount, 'f', 2, 64)
	if err := h.querier.SetConfig(ctx, store.KeyFinancialGoal, value); err != nil {
		logs.Errorf("[chat] saving financial goal failed: %v", err)
		h.send(chatID, msgSomethingWrong)
		return
	}
	h.mirror.UpdateKey(ctx, contextdoc.KeyMetaFinanceira, amount)
	h.sessions.Set(chatID, session.Idle)
	h.send(chatID, msgOnboardingDone)
}

func (h *Handler) handleCheckinResponse(ctx context.Context, chatID int64, text string) {
	lower := strings.ToLower(text)
	for _, token := range workingTokens {
		if strings.Contains(lower, token) {
			h.sessions.Set(chatID, session.Idle)
			h.send(chatID, msgEncouragement)
			return
		}
	}

	if err := h.querier.RecordDeferral(ctx, text); err != nil {
		logs.Errorf("[chat] recording deferral failed: %v", err)
		h.sessions.Set(chatID, session.Idle)
		h.send(chatID, msgSomethingWrong)
		return
	}
	h.mirror.UpdateKey(ctx, contextdoc.KeyUltimoMotivoAdiamento, text)
	h.sessions.Set(chatID, session.Idle)
	extra := "O usuário acabou de adiar as tarefas pendentes com este motivo: " + text
	h.send(chatID, h.brain.Complete(ctx, text, extra))
}

func (h *Handler) handleIdle(ctx context.Context, chatID int64, text string) {
	if c := intent.Classify(text); c != nil {
		entry, err := h.querier.AddLedgerEntry(ctx, c.Kind, text, c.Amount)
		if err != nil {
			logs.Errorf("[chat] adding ledger entry failed: %v", err)
			h.send(chatID, msgSomethingWrong)
			return
		}
		h.mirror.UpdateKey(ctx, contextdoc.KeyUltimoLancamento, map[string]interface{}{
			"tipo":      string(entry.Kind),
			"valor":     entry.Amount,
			"descricao": entry.Description,
		})
		balance, err := h.querier.GetBalance(ctx)
		if err != nil {
			logs.Errorf("[chat] computing balance failed: %v", err)
			h.send(chatID, msgSomethingWrong)
			return
		}
		verb := "Gasto"
		if c.Kind == store.KindCredit {
			verb = "Ganho"
		}
		h.send(chatID, fmt.Sprintf("%s de R$ %.2f anotado! 🧾\n\n💰 Saldo atual: *R$ %.2f*", verb, c.Amount, balance))
		return
	}
	h.send(chatID, h.brain.Complete(ctx, text, ""))
}

// Morning fires on the chat's daily morning timer. It only prompts for the
// day's single priority; the answer flows through the idle state like any
// other free text.
func (h *Handler) Morning(chatID int64) {
	lock := h.lockChat(chatID)
	lock.Lock()
	defer lock.Unlock()

	h.send(chatID, msgMorning)
}

// Checkin fires on the chat's recurring check-in timer. With nothing
// pending it only sends a notice; otherwise it sends the pending list and
// waits for the user's answer.
func (h *Handler) Checkin(chatID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lock := h.lockChat(chatID)
	lock.Lock()
	defer lock.Unlock()

	pending, err := h.querier.ListPending(ctx)
	if err != nil {
		logs.Errorf("[chat] check-in task listing failed: %v", err)
		return
	}
	if len(pending) == 0 {
		h.send(chatID, msgCheckinAllClear)
		return
	}

	var b strings.Builder
	b.WriteString("👀 *Check-in!* Você ainda tem tarefas pendentes:\n\n")
	for _, t := range pending {
		b.WriteString(fmt.Sprintf("⏳ %d. %s\n", t.ID, t.Description))
	}
	b.WriteString("\nVocê tá trabalhando em alguma delas agora? Me conta!")
	h.sessions.Set(chatID, session.AwaitingCheckinResponse)
	h.send(chatID, b.String())
}
