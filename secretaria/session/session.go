package session

import "sync"

// State is the per-chat conversation state. Exactly one state is active per
// chat; entering a new state discards the previous one. States live only in
// process memory and restart from Idle when the process restarts.
type State string

const (
	Idle                    State = "idle"
	AwaitingInitialBalance  State = "awaiting_initial_balance"
	AwaitingFinancialGoal   State = "awaiting_financial_goal"
	AwaitingCheckinResponse State = "awaiting_checkin_response"
)

// Store maps chat ids to their conversation state. Entries are created on
// first contact and persist for the process lifetime.
type Store struct {
	mu     sync.RWMutex
	states map[int64]State
}

func NewStore() *Store {
	return &Store{
		states: make(map[int64]State),
	}
}

// Get returns the state for chatID, defaulting to Idle for unknown chats.
func (s *Store) Get(chatID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[chatID]; ok {
		return st
	}
	return Idle
}

func (s *Store) Set(chatID int64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[chatID] = st
}
