package bot

import (
	"sync"
	"time"
)

const actionAwaitLinkCode = "await_link_code"

const (
	maxLinkFailures = 5
	linkLockout     = 15 * time.Minute
)

// ChatState is the pending conversation step of one chat.
type ChatState struct {
	Action string
	Step   int
}

// ChatFSM tracks conversation state per chat.
type ChatFSM struct {
	mu     sync.Mutex
	states map[int64]*ChatState
	// link code failures per Telegram user
	failures map[int64]*linkFailures
}

type linkFailures struct {
	count       int
	lockedUntil time.Time
}

func NewChatFSM() *ChatFSM {
	return &ChatFSM{
		states:   make(map[int64]*ChatState),
		failures: make(map[int64]*linkFailures),
	}
}

func (fsm *ChatFSM) GetState(chatID int64) (*ChatState, bool) {
	fsm.mu.Lock()
	defer fsm.mu.Unlock()
	state, exists := fsm.states[chatID]
	return state, exists
}

func (fsm *ChatFSM) SetState(chatID int64, state *ChatState) {
	fsm.mu.Lock()
	defer fsm.mu.Unlock()
	fsm.states[chatID] = state
}

func (fsm *ChatFSM) DeleteState(chatID int64) {
	fsm.mu.Lock()
	defer fsm.mu.Unlock()
	delete(fsm.states, chatID)
}

// LinkLockedUntil reports whether telegramID may not try link codes at now, and until when.
func (fsm *ChatFSM) LinkLockedUntil(telegramID int64, now time.Time) (time.Time, bool) {
	fsm.mu.Lock()
	defer fsm.mu.Unlock()
	f, ok := fsm.failures[telegramID]
	if !ok || !now.Before(f.lockedUntil) {
		return time.Time{}, false
	}
	return f.lockedUntil, true
}

// RecordLinkFailure counts a wrong code. After maxLinkFailures the user is locked out for
// linkLockout and the count starts over.
func (fsm *ChatFSM) RecordLinkFailure(telegramID int64, now time.Time) bool {
	fsm.mu.Lock()
	defer fsm.mu.Unlock()
	f, ok := fsm.failures[telegramID]
	if !ok {
		f = &linkFailures{}
		fsm.failures[telegramID] = f
	}
	f.count++
	if f.count < maxLinkFailures {
		return false
	}
	f.count = 0
	f.lockedUntil = now.Add(linkLockout)
	return true
}

func (fsm *ChatFSM) ResetLinkFailures(telegramID int64) {
	fsm.mu.Lock()
	defer fsm.mu.Unlock()
	delete(fsm.failures, telegramID)
}
