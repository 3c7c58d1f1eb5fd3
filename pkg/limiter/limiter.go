// Пакет limiter ограничивает число одновременно открытых сессий редактора.
package limiter

import (
	"log/slog"
	"math"
)

type LimiterInt interface {
	// CanOpenSession сообщает, можно ли открыть еще одну сессию при active открытых.
	CanOpenSession(active int) bool
	// GetRemainingSessions возвращает число сессий, которые еще можно открыть.
	GetRemainingSessions(active int) int
}

// New возвращает ограничитель на max сессий. Неположительный max снимает ограничение.
func New(max int) LimiterInt {
	if max <= 0 {
		slog.Info("Using community limiter")
		return CommunityLimiter{}
	}
	slog.Info("Using fixed session limiter", "max", max)
	return FixedLimiter{Max: max}
}

// CommunityLimiter не ограничивает число сессий.
type CommunityLimiter struct{}

func (c CommunityLimiter) CanOpenSession(active int) bool {
	return true
}

func (c CommunityLimiter) GetRemainingSessions(active int) int {
	return math.MaxInt32
}

type FixedLimiter struct {
	Max int
}

func (c FixedLimiter) CanOpenSession(active int) bool {
	return active < c.Max
}

func (c FixedLimiter) GetRemainingSessions(active int) int {
	return max(0, c.Max-active)
}
