package event

import (
	"go.uber.org/zap"
	"sync"
)

type Listener struct {
	eventType Type
	callback  func(e Event)
}

// Manager delivers events to listeners synchronously, in registration order.
type Manager struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewManager() *Manager {
	return &Manager{listeners: make([]Listener, 0)}
}

func (m *Manager) AddEventListener(eventType Type, callback func(e Event)) {
	zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: AddListener")

	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, Listener{eventType, callback})
}

func (m *Manager) EmitEvent(e Event) {
	m.mu.RLock()
	listeners := m.listeners
	m.mu.RUnlock()

	if len(listeners) == 0 {
		zap.L().Debug("No event listeners available")
	}

	for _, listener := range listeners {
		if listener.eventType == e.Type || listener.eventType == AllEvents {
			zap.L().With(zap.String("type", string(e.Type)), zap.String("ref", e.Ref)).Debug("EventManager: Emitting event")
			m.deliver(listener, e)
		}
	}
}

func (m *Manager) deliver(listener Listener, e Event) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().With(zap.String("type", string(e.Type)), zap.Any("panic", r)).Error("EventManager: Listener panicked")
		}
	}()

	listener.callback(e)
}
