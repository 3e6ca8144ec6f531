package nav

import (
	"sync"
	"time"
)

// YearMemory remembers the last report year each chat picked, so that month
// selection can omit the year. It is convenience state only: a missing entry
// falls back to the current year and report correctness never depends on it.
type YearMemory struct {
	mu    sync.RWMutex
	years map[int64]int
	now   func() time.Time
}

func NewYearMemory() *YearMemory {
	return &YearMemory{
		years: make(map[int64]int),
		now:   time.Now,
	}
}

// Set records the last selected year for a chat.
func (m *YearMemory) Set(chatID int64, year int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.years[chatID] = year
}

// Get returns the chat's last selected year, defaulting to the current year.
func (m *YearMemory) Get(chatID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if year, ok := m.years[chatID]; ok {
		return year
	}
	return m.now().Year()
}
