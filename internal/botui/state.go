package botui

import "sync"

// ChatState is what the next plain-text message from a chat means.
type ChatState string

const (
	StateNone            ChatState = ""
	StateAddingStudent   ChatState = "adding_student"
	StateAwaitingTopic   ChatState = "awaiting_topic"
	StateAwaitingFeedbck ChatState = "awaiting_feedback"
	StateAwaitingToken   ChatState = "awaiting_drive_token"
	StateAwaitingChat    ChatState = "awaiting_chat"
)

// StateManager tracks per-chat dialog state in memory. Telegram delivers
// free text with no context of its own, so the bot records what it asked
// for and interprets the next message accordingly.
type StateManager struct {
	mu     sync.Mutex
	states map[int64]*chatState
}

type chatState struct {
	state ChatState
	data  map[string]any
}

// NewStateManager creates an empty StateManager.
func NewStateManager() *StateManager {
	return &StateManager{states: make(map[int64]*chatState)}
}

// SetState records the dialog state for a chat.
func (m *StateManager) SetState(chatID int64, state ChatState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chat(chatID).state = state
}

// State returns the current dialog state for a chat.
func (m *StateManager) State(chatID int64) ChatState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.states[chatID]; ok {
		return c.state
	}
	return StateNone
}

// SetData stores a dialog value for a chat.
func (m *StateManager) SetData(chatID int64, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chat(chatID).data[key] = value
}

// Data returns a dialog value for a chat.
func (m *StateManager) Data(chatID int64, key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.states[chatID]; ok {
		v, ok := c.data[key]
		return v, ok
	}
	return nil, false
}

// Clear drops the dialog state and data for a chat.
func (m *StateManager) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, chatID)
}

func (m *StateManager) chat(chatID int64) *chatState {
	c, ok := m.states[chatID]
	if !ok {
		c = &chatState{data: make(map[string]any)}
		m.states[chatID] = c
	}
	return c
}
