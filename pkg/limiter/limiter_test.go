package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert.IsType(t, CommunityLimiter{}, New(0))
	assert.IsType(t, CommunityLimiter{}, New(-1))
	assert.Equal(t, FixedLimiter{Max: 3}, New(3))
}

func TestFixedLimiter(t *testing.T) {
	l := FixedLimiter{Max: 2}
	assert.True(t, l.CanOpenSession(0))
	assert.True(t, l.CanOpenSession(1))
	assert.False(t, l.CanOpenSession(2))
	assert.Equal(t, 1, l.GetRemainingSessions(1))
	assert.Equal(t, 0, l.GetRemainingSessions(5))
}

func TestCommunityLimiter(t *testing.T) {
	l := CommunityLimiter{}
	assert.True(t, l.CanOpenSession(1<<20))
	assert.Positive(t, l.GetRemainingSessions(1<<20))
}
