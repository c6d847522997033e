package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hatcher/secretaria/pkg/logs"
	"github.com/hatcher/secretaria/secretaria/session"
	"github.com/hatcher/secretaria/secretaria/store"
)

// HandleCommand routes a structured command. Unknown commands get the
// greeting text so the user always sees the available surface.
func (h *Handler) HandleCommand(ctx context.Context, chatID int64, command, args string) {
	lock := h.lockChat(chatID)
	lock.Lock()
	defer lock.Unlock()

	switch command {
	case "start":
		h.cmdStart(ctx, chatID)
	case "tarefa":
		h.cmdAddTask(ctx, chatID, args)
	case "lista":
		h.cmdListTasks(ctx, chatID)
	case "feito":
		h.cmdCompleteTask(ctx, chatID, args)
	case "saldo":
		h.cmdBalance(ctx, chatID)
	case "extrato":
		h.cmdStatement(ctx, chatID)
	default:
		h.send(chatID, msgGreeting)
	}
}

// cmdStart registers the chat: greets, arms the daily timers and, when the
// financial config was never set, begins onboarding.
func (h *Handler) cmdStart(ctx context.Context, chatID int64) {
	h.send(chatID, msgGreeting)

	if err := h.sched.ArmCheckin(chatID, h.Checkin); err != nil {
		logs.Errorf("[chat] arming check-in for %d failed: %v", chatID, err)
	}
	if err := h.sched.ArmMorning(chatID, h.Morning); err != nil {
		logs.Errorf("[chat] arming morning prompt for %d failed: %v", chatID, err)
	}

	_, ok, err := h.querier.GetConfig(ctx, store.KeyInitialBalance)
	if err != nil {
		logs.Errorf("[chat] reading config failed: %v", err)
		h.send(chatID, msgSomethingWrong)
		return
	}
	if !ok {
		h.sessions.Set(chatID, session.AwaitingInitialBalance)
		h.send(chatID, msgAskInitialBalance)
	}
}

func (h *Handler) cmdAddTask(ctx context.Context, chatID int64, args string) {
	description := strings.TrimSpace(args)
	if description == "" {
		h.send(chatID, msgTaskUsage)
		return
	}
	task, err := h.querier.CreateTask(ctx, description)
	if err != nil {
		logs.Errorf("[chat] creating task failed: %v", err)
		h.send(chatID, msgSomethingWrong)
		return
	}
	h.sched.ArmNag(task.ID, chatID, task.Description)
	h.send(chatID, fmt.Sprintf("✅ Tarefa adicionada:\n📌 *%s*\n\nPra concluir: /feito %d", task.Description, task.ID))
}

func (h *Handler) cmdListTasks(ctx context.Context, chatID int64) {
	pending, err := h.querier.ListPending(ctx)
	if err != nil {
		logs.Errorf("[chat] listing tasks failed: %v", err)
		h.send(chatID, msgSomethingWrong)
		return
	}
	if len(pending) == 0 {
		h.send(chatID, msgNoTasks)
		return
	}
	var b strings.Builder
	b.WriteString("📋 *Suas tarefas:*\n\n")
	for _, t := range pending {
		b.WriteString(fmt.Sprintf("⏳ %d. %s", t.ID, t.Description))
		if t.DeferralReason != nil && *t.DeferralReason != "" {
			b.WriteString(fmt.Sprintf("\n   _(adiada: %s)_", *t.DeferralReason))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nPara marcar como feita: /feito <número>")
	h.send(chatID, b.String())
}

func (h *Handler) cmdCompleteTask(ctx context.Context, chatID int64, args string) {
	raw := strings.TrimSpace(args)
	if raw == "" {
		h.send(chatID, msgDoneUsage)
		return
	}
	id, err := strconv.ParseInt(strings.Fields(raw)[0], 10, 64)
	if err != nil {
		h.send(chatID, msgDoneUsage)
		return
	}
	done, err := h.querier.CompleteTask(ctx, id)
	if err != nil {
		logs.Errorf("[chat] completing task %d failed: %v", id, err)
		h.send(chatID, msgSomethingWrong)
		return
	}
	if !done {
		h.send(chatID, msgTaskNotFound)
		return
	}
	h.sched.CancelNags(id)
	h.send(chatID, fmt.Sprintf("🎉 Arrasou! Tarefa *%d* concluída!", id))
}

func (h *Handler) cmdBalance(ctx context.Context, chatID int64) {
	balance, err := h.querier.GetBalance(ctx)
	if err != nil {
		logs.Errorf("[chat] computing balance failed: %v", err)
		h.send(chatID, msgSomethingWrong)
		return
	}
	text := fmt.Sprintf("💰 Saldo atual: *R$ %.2f*", balance)
	if goal, ok, err := h.querier.GetConfig(ctx, store.KeyFinancialGoal); err == nil && ok {
		text += fmt.Sprintf("\n🎯 Meta: R$ %s", goal)
	}
	h.send(chatID, text)
}

func (h *Handler) cmdStatement(ctx context.Context, chatID int64) {
	entries, err := h.querier.ListRecentLedger(ctx, 10)
	if err != nil {
		logs.Errorf("[chat] listing ledger failed: %v", err)
		h.send(chatID, msgSomethingWrong)
		return
	}
	if len(entries) == 0 {
		h.send(chatID, "Nenhum lançamento ainda. Me conta seus gastos e ganhos que eu anoto!")
		return
	}
	var b strings.Builder
	b.WriteString("🧾 *Últimos lançamentos:*\n\n")
	for _, e := range entries {
		sign := "➖"
		if e.Kind == store.KindCredit {
			sign = "➕"
		}
		b.WriteString(fmt.Sprintf("%s R$ %.2f — %s\n", sign, e.Amount, e.Description))
	}
	h.send(chatID, b.String())
}
