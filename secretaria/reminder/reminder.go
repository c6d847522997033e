package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hatcher/secretaria/pkg/cronx"
	"github.com/hatcher/secretaria/pkg/logs"
	"github.com/hatcher/secretaria/pkg/safego"
)

type Mode string

const (
	OneShot   Mode = "one_shot"
	Repeating Mode = "repeating"
)

// Config selects the nag policy for every task (the mode is a configuration
// choice, not a per-task choice) and the daily message cadences.
type Config struct {
	Mode        string `json:"mode" yaml:"mode" mapstructure:"mode"`
	Interval    int    `json:"interval" yaml:"interval" mapstructure:"interval"`
	CheckinSpec string `json:"checkinSpec" yaml:"checkin-spec" mapstructure:"checkin-spec"`
	MorningSpec string `json:"morningSpec" yaml:"morning-spec" mapstructure:"morning-spec"`
}

// StatusReader answers whether a task is still pending. The relational
// store serializes task rows, so a fire racing a completion command sees
// either fully-pending or fully-completed.
type StatusReader interface {
	TaskPending(ctx context.Context, id int64) (bool, error)
}

type Sender interface {
	Send(chatID int64, text string) error
}

// CheckinFunc runs each time a chat's check-in timer fires.
type CheckinFunc = func(chatID int64)

// Scheduler owns the per-task nag jobs and the per-chat check-in timers.
// Nag jobs are keyed by task id; cancelling on completion is a direct
// lookup. Jobs are in-memory only and do not survive a restart.
type Scheduler struct {
	mode     Mode
	interval time.Duration

	mu       sync.Mutex
	jobs     map[int64]*nagJob
	checkins map[int64]cron.EntryID
	mornings map[int64]cron.EntryID

	cron        *cronx.StoppableCron
	checkinSpec string
	morningSpec string
	tasks       StatusReader
	sender      Sender
}

func NewScheduler(cfg Config, tasks StatusReader, sender Sender) *Scheduler {
	mode := Mode(cfg.Mode)
	if mode != OneShot {
		mode = Repeating
	}
	interval := time.Duration(cfg.Interval) * time.Second
	if cfg.Interval <= 0 {
		interval = 30 * time.Minute
	}
	spec := cfg.CheckinSpec
	if spec == "" {
		spec = "0 0 * * * *"
	}
	morning := cfg.MorningSpec
	if morning == "" {
		morning = "0 0 7 * * *"
	}
	return &Scheduler{
		mode:        mode,
		interval:    interval,
		jobs:        make(map[int64]*nagJob),
		checkins:    make(map[int64]cron.EntryID),
		mornings:    make(map[int64]cron.EntryID),
		cron:        cronx.NewStoppableCron(),
		checkinSpec: spec,
		morningSpec: morning,
		tasks:       tasks,
		sender:      sender,
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels every nag job and halts the check-in cron.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for id, job := range s.jobs {
		job.cancel()
		delete(s.jobs, id)
	}
	s.mu.Unlock()
	<-s.cron.Stop().Done()
}

// ArmNag starts the nag timer for a freshly created task. Re-arming an
// already armed task id replaces the previous job.
func (s *Scheduler) ArmNag(taskID, chatID int64, description string) {
	job := &nagJob{
		scheduler:   s,
		taskID:      taskID,
		chatID:      chatID,
		description: description,
		stop:        make(chan struct{}),
	}
	s.mu.Lock()
	if prev, ok := s.jobs[taskID]; ok {
		prev.cancel()
	}
	s.jobs[taskID] = job
	s.mu.Unlock()
	safego.Go(job.run)
}

// CancelNags cancels all active jobs for taskID, independent of the next
// scheduled fire. Unknown ids are a no-op.
func (s *Scheduler) CancelNags(taskID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[taskID]; ok {
		job.cancel()
		delete(s.jobs, taskID)
	}
}

// NagArmed reports whether a job for taskID is still registered.
func (s *Scheduler) NagArmed(taskID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[taskID]
	return ok
}

// ArmCheckin starts the recurring check-in timer for a chat. Arming twice
// for the same chat is a no-op; the timer runs for the lifetime of the chat
// and is never cancelled by task completion.
func (s *Scheduler) ArmCheckin(chatID int64, fire CheckinFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.checkins[chatID]; ok {
		return nil
	}
	id, err := s.cron.AddFunc(s.checkinSpec, func() {
		safego.Go(func() { fire(chatID) })
	})
	if err != nil {
		return err
	}
	s.checkins[chatID] = id
	return nil
}

// CheckinArmed reports whether the chat already has its check-in timer.
func (s *Scheduler) CheckinArmed(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.checkins[chatID]
	return ok
}

// ArmMorning starts the daily morning-priority timer for a chat. Same
// lifecycle as the check-in: armed once, never cancelled by completions.
func (s *Scheduler) ArmMorning(chatID int64, fire CheckinFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mornings[chatID]; ok {
		return nil
	}
	id, err := s.cron.AddFunc(s.morningSpec, func() {
		safego.Go(func() { fire(chatID) })
	})
	if err != nil {
		return err
	}
	s.mornings[chatID] = id
	return nil
}

// MorningArmed reports whether the chat already has its morning timer.
func (s *Scheduler) MorningArmed(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.mornings[chatID]
	return ok
}

func (s *Scheduler) unregister(job *nagJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.jobs[job.taskID]; ok && current == job {
		delete(s.jobs, job.taskID)
	}
}

// nagJob is one task's reminder timer: Scheduled until the first fire,
// Cancelled once the task completes or the job is explicitly cancelled.
type nagJob struct {
	scheduler   *Scheduler
	taskID      int64
	chatID      int64
	description string
	stop        chan struct{}
	once        sync.Once
}

func (j *nagJob) cancel() {
	j.once.Do(func() { close(j.stop) })
}

func (j *nagJob) run() {
	s := j.scheduler
	if s.mode == OneShot {
		timer := time.NewTimer(s.interval)
		defer timer.Stop()
		select {
		case <-j.stop:
			return
		case <-timer.C:
			j.fire()
			s.unregister(j)
		}
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-j.stop:
			return
		case <-ticker.C:
			if !j.fire() {
				s.unregister(j)
				return
			}
		}
	}
}

// fire checks the task's current status and nags if it is still pending.
// Returns false once the job observed completion and should stop. A failed
// send is logged without retry; the schedule itself is unaffected.
func (j *nagJob) fire() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pending, err := j.scheduler.tasks.TaskPending(ctx, j.taskID)
	if err != nil {
		logs.Errorf("[reminder] status check for task %d failed: %v", j.taskID, err)
		return true
	}
	if !pending {
		return false
	}
	text := fmt.Sprintf("⏰ Lembrete: você ainda não terminou a tarefa *%d*:\n📌 %s\n\nQuando terminar, manda /feito %d", j.taskID, j.description, j.taskID)
	if err := j.scheduler.sender.Send(j.chatID, text); err != nil {
		logs.Errorf("[reminder] nag send for task %d failed: %v", j.taskID, err)
	}
	return true
}
