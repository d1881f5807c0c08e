package dashboard

import (
	"sync"
	"time"
)

const (
	DefWindow     = 50
	DefFocusRound = 10
)

// Settings are the operator controlled inputs of the dashboard.
type Settings struct {
	AutoRefresh bool      `json:"auto_refresh"`
	Window      int       `json:"window"`
	FocusRound  int       `json:"focus_round"`
	LastReset   time.Time `json:"last_reset"`
}

// SettingsPatch carries a partial update; nil fields are left as they are.
type SettingsPatch struct {
	AutoRefresh *bool `json:"auto_refresh,omitempty"`
	Window      *int  `json:"window,omitempty"`
	FocusRound  *int  `json:"focus_round,omitempty"`
}

func (p SettingsPatch) Validate() error {
	if p.Window != nil && *p.Window < 1 {
		return ErrInvalidWindow
	}
	if p.FocusRound != nil && *p.FocusRound < 1 {
		return ErrInvalidRound
	}

	return nil
}

// State holds the settings for the lifetime of the process. It is created at
// start-up, read by the poll loop on every tick and written only by toggle
// handlers (HTTP, MQTT control topic). Each write is signalled on Changed.
type State struct {
	mu      sync.RWMutex
	current Settings
	changed chan struct{}
}

func NewState(initial Settings) *State {
	if initial.Window < 1 {
		initial.Window = DefWindow
	}
	if initial.FocusRound < 1 {
		initial.FocusRound = DefFocusRound
	}
	if initial.LastReset.IsZero() {
		initial.LastReset = time.Now()
	}

	return &State{
		current: initial,
		changed: make(chan struct{}, 1),
	}
}

func (s *State) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

func (s *State) Apply(p SettingsPatch) (Settings, error) {
	if err := p.Validate(); err != nil {
		return Settings{}, err
	}

	s.mu.Lock()
	if p.AutoRefresh != nil {
		s.current.AutoRefresh = *p.AutoRefresh
	}
	if p.Window != nil {
		s.current.Window = *p.Window
	}
	if p.FocusRound != nil {
		s.current.FocusRound = *p.FocusRound
	}
	updated := s.current
	s.mu.Unlock()

	s.notify()

	return updated, nil
}

// Reset stamps the last reset time and asks the poll loop for a new frame.
func (s *State) Reset(at time.Time) Settings {
	s.mu.Lock()
	s.current.LastReset = at
	updated := s.current
	s.mu.Unlock()

	s.notify()

	return updated
}

// Changed fires after any write. Bursts of writes coalesce into one signal.
func (s *State) Changed() <-chan struct{} {
	return s.changed
}

func (s *State) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}
