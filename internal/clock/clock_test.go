package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystem_ReturnsUTC(t *testing.T) {
	now := System().Now()
	assert.Equal(t, time.UTC, now.Location())
}

func TestFrozen_DoesNotMove(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := Frozen(base)

	assert.Equal(t, base, c.Now())
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, base, c.Now())
}

func TestFrozen_Advance(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := Frozen(base)

	got := c.Advance(15 * time.Minute)
	assert.Equal(t, base.Add(15*time.Minute), got)
	assert.Equal(t, got, c.Now())
}

func TestFrozen_Set(t *testing.T) {
	c := Frozen(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	target := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	c.Set(target)
	assert.Equal(t, target, c.Now())
}
