package infrastructure

import (
	"sync"
	"time"
)

// chatSession tracks the last contact prompt sent to one Telegram chat
type chatSession struct {
	ChatID     int64
	LastPrompt time.Time
	mu         sync.Mutex
}

// ContactPrompts debounces "share your phone" prompts per chat so a chatty
// user is not sent a new keyboard for every message.
type ContactPrompts struct {
	sessions map[int64]*chatSession
	mu       sync.RWMutex
	interval time.Duration
	now      func() time.Time
}

func NewContactPrompts(interval time.Duration) *ContactPrompts {
	return &ContactPrompts{
		sessions: make(map[int64]*chatSession),
		interval: interval,
		now:      time.Now,
	}
}

func (cp *ContactPrompts) getOrCreate(chatID int64) *chatSession {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	session, exists := cp.sessions[chatID]
	if !exists {
		session = &chatSession{ChatID: chatID}
		cp.sessions[chatID] = session
	}
	return session
}

// ShouldPrompt reports whether chatID may be prompted now and, if so, records the prompt
func (cp *ContactPrompts) ShouldPrompt(chatID int64) bool {
	if cp == nil {
		return true
	}
	session := cp.getOrCreate(chatID)

	session.mu.Lock()
	defer session.mu.Unlock()

	now := cp.now()
	if !session.LastPrompt.IsZero() && now.Sub(session.LastPrompt) < cp.interval {
		return false
	}
	session.LastPrompt = now
	return true
}

// Forget drops the chat's state once it has shared a contact
func (cp *ContactPrompts) Forget(chatID int64) {
	if cp == nil {
		return
	}
	cp.mu.Lock()
	defer cp.mu.Unlock()
	delete(cp.sessions, chatID)
}
