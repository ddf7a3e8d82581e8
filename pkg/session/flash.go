package session

// Flash messages are one-shot session values: written on one request,
// consumed on the next. They live in the session's value map under a
// reserved key so every configured store persists them for free.

const flashKey = "_flash"

// Flash stores a one-shot message under the given key.
// Setting a key that already holds a message overwrites it.
func (s *Session) Flash(key string, val any) {
	bag, _ := s.GetValue(flashKey)
	m, ok := bag.(map[string]any)
	if !ok {
		m = make(map[string]any)
	}
	m[key] = val
	s.SetValue(flashKey, m)
}

// PopFlash retrieves and removes a flash message.
// Returns nil and false if no message is stored under the key.
func (s *Session) PopFlash(key string) (any, bool) {
	bag, _ := s.GetValue(flashKey)
	m, ok := bag.(map[string]any)
	if !ok {
		return nil, false
	}
	val, ok := m[key]
	if !ok {
		return nil, false
	}

	delete(m, key)
	if len(m) == 0 {
		s.DeleteValue(flashKey)
	} else {
		s.SetValue(flashKey, m)
	}
	return val, true
}

// Flashes retrieves and removes all flash messages at once.
func (s *Session) Flashes() map[string]any {
	bag, _ := s.GetValue(flashKey)
	m, ok := bag.(map[string]any)
	if !ok {
		return nil
	}
	s.DeleteValue(flashKey)
	return m
}
