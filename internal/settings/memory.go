package settings

import (
	"strconv"
	"sync"

	"github.com/roach88/profiled/internal/bus"
)

// Memory implements Store and Prefs in process memory.
//
// When constructed with a bus, every settings write publishes the key's
// change topic, matching the notification behavior of the durable store.
// A nil bus disables notifications.
type Memory struct {
	mu     sync.RWMutex
	values map[Scope]map[string]string
	prefs  map[string]map[string]string
	bus    *bus.Bus
}

// NewMemory creates an empty in-memory settings store. b may be nil.
func NewMemory(b *bus.Bus) *Memory {
	return &Memory{
		values: make(map[Scope]map[string]string),
		prefs:  make(map[string]map[string]string),
		bus:    b,
	}
}

func (m *Memory) notify(key string, scope Scope) {
	if m.bus != nil {
		m.bus.Publish(bus.SettingTopic(string(scope), key))
	}
}

// GetString returns the value for (key, scope), ok=false when absent.
func (m *Memory) GetString(key string, scope Scope) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[scope][key]
	return v, ok, nil
}

// PutString stores the value and publishes the key's change topic.
func (m *Memory) PutString(key, value string, scope Scope) error {
	m.mu.Lock()
	if m.values[scope] == nil {
		m.values[scope] = make(map[string]string)
	}
	m.values[scope][key] = value
	m.mu.Unlock()

	m.notify(key, scope)
	return nil
}

// GetInt returns the int value for (key, scope), or def when the key is
// absent or its value does not parse as an int.
func (m *Memory) GetInt(key string, def int, scope Scope) (int, error) {
	s, ok, err := m.GetString(key, scope)
	if err != nil || !ok {
		return def, err
	}
	n, perr := strconv.Atoi(s)
	if perr != nil {
		return def, nil
	}
	return n, nil
}

// PutInt stores the int value and publishes the key's change topic.
func (m *Memory) PutInt(key string, value int, scope Scope) error {
	return m.PutString(key, strconv.Itoa(value), scope)
}

// Delete removes the key and publishes its change topic. Deleting an
// absent key is a no-op and publishes nothing.
func (m *Memory) Delete(key string, scope Scope) error {
	m.mu.Lock()
	_, ok := m.values[scope][key]
	if ok {
		delete(m.values[scope], key)
	}
	m.mu.Unlock()

	if ok {
		m.notify(key, scope)
	}
	return nil
}

// Get returns the pref value, ok=false when absent.
func (m *Memory) Get(namespace, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.prefs[namespace][key]
	return v, ok, nil
}

// Put stores a pref value. Prefs carry no change notifications.
func (m *Memory) Put(namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs[namespace] == nil {
		m.prefs[namespace] = make(map[string]string)
	}
	m.prefs[namespace][key] = value
	return nil
}

// DeletePref removes a pref key; absent keys are a no-op.
func (m *Memory) DeletePref(namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.prefs[namespace], key)
	return nil
}

// Keys returns all pref keys in the namespace.
func (m *Memory) Keys(namespace string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.prefs[namespace]))
	for k := range m.prefs[namespace] {
		keys = append(keys, k)
	}
	return keys, nil
}
