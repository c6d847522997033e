package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	hertzapp "github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"golang.org/x/sync/errgroup"

	"github.com/hatcher/secretaria/pkg/logs"
	"github.com/hatcher/secretaria/pkg/ormx"
	"github.com/hatcher/secretaria/pkg/resp"
	"github.com/hatcher/secretaria/pkg/webx"
	"github.com/hatcher/secretaria/secretaria/brain"
	"github.com/hatcher/secretaria/secretaria/chat"
	"github.com/hatcher/secretaria/secretaria/contextdoc"
	"github.com/hatcher/secretaria/secretaria/reminder"
	"github.com/hatcher/secretaria/secretaria/session"
	"github.com/hatcher/secretaria/secretaria/store"
	"github.com/hatcher/secretaria/transport/telegram"
)

type Config struct {
	Log      logs.Config       `json:"log" yaml:"log" mapstructure:"log"`
	Web      webx.WebConfig    `json:"web" yaml:"web" mapstructure:"web"`
	DB       ormx.DBConfig     `json:"db" yaml:"db" mapstructure:"db"`
	Telegram telegram.Config   `json:"telegram" yaml:"telegram" mapstructure:"telegram"`
	Reminder reminder.Config   `json:"reminder" yaml:"reminder" mapstructure:"reminder"`
	Context  contextdoc.Config `json:"context" yaml:"context" mapstructure:"context"`
	Brain    brain.Config      `json:"brain" yaml:"brain" mapstructure:"brain"`
}

// App wires the assistant: store, context mirror, completion client,
// reminder scheduler, conversation handler, transport, keep-alive web.
type App struct {
	Queries    *store.Queries
	Sessions   *session.Store
	Scheduler  *reminder.Scheduler
	Brain      *brain.Client
	ContextDoc *contextdoc.Client
	Handler    *chat.Handler

	bot *telegram.Bot
	web *server.Hertz
}

func New(cfg Config) (*App, error) {
	db, err := ormx.NewDBClient(cfg.DB)
	if err != nil {
		return nil, err
	}
	queries := store.New(db)

	bot, err := telegram.NewBot(cfg.Telegram)
	if err != nil {
		return nil, err
	}

	ctxDoc := contextdoc.NewClient(cfg.Context)
	sessions := session.NewStore()
	scheduler := reminder.NewScheduler(cfg.Reminder, queries, bot)
	brainClient := brain.NewClient(cfg.Brain, queries, ctxDoc)
	handler := chat.NewHandler(queries, sessions, scheduler, brainClient, ctxDoc, bot)

	a := &App{
		Queries:    queries,
		Sessions:   sessions,
		Scheduler:  scheduler,
		Brain:      brainClient,
		ContextDoc: ctxDoc,
		Handler:    handler,
		bot:        bot,
		web:        webx.WebEngine(cfg.Web),
	}
	a.registerRoutes()
	return a, nil
}

// registerRoutes adds the operational surface on top of the keep-alive
// engine.
func (a *App) registerRoutes() {
	a.web.GET("/status", func(c context.Context, ctx *hertzapp.RequestContext) {
		pending, err := a.Queries.ListPending(c)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, resp.Error(resp.Failed, err.Error()))
			return
		}
		balance, err := a.Queries.GetBalance(c)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, resp.Error(resp.Failed, err.Error()))
			return
		}
		ctx.JSON(http.StatusOK, resp.Success(map[string]interface{}{
			"pendingTasks": len(pending),
			"balance":      balance,
		}))
	})
}

// Run starts the transport poller, the keep-alive web server and the
// reminder scheduler, blocking until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.Scheduler.Start()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.bot.Poll(ctx, a.Handler)
	})
	g.Go(func() error {
		a.web.Spin()
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.Scheduler.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.web.Shutdown(shutdownCtx); err != nil {
			logs.Errorf("[app] web shutdown error: %v", err)
		}
		return nil
	})
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
