package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestMockClock(t *testing.T) {
	c := NewMockClock(epoch)

	assert.Equal(t, epoch, c.Now())

	c.Advance(250 * time.Millisecond)
	assert.Equal(t, epoch.Add(250*time.Millisecond), c.Now())
	assert.Equal(t, 250*time.Millisecond, c.Since(epoch))

	c.Set(epoch)
	assert.Equal(t, epoch, c.Now())
}

func TestRealClock(t *testing.T) {
	var c Clock = RealClock{}
	before := time.Now()
	assert.False(t, c.Now().Before(before))
	assert.GreaterOrEqual(t, c.Since(before), time.Duration(0))
}

func TestDeadline(t *testing.T) {
	t.Run("fires once when due", func(t *testing.T) {
		var d Deadline
		calls := 0
		d.Start(epoch.Add(time.Second), func() { calls++ })

		assert.True(t, d.Pending())
		assert.False(t, d.Fire(epoch.Add(999*time.Millisecond)))
		assert.Equal(t, 0, calls)

		assert.True(t, d.Fire(epoch.Add(time.Second)))
		assert.Equal(t, 1, calls)
		assert.False(t, d.Pending())

		assert.False(t, d.Fire(epoch.Add(2*time.Second)))
		assert.Equal(t, 1, calls)
	})

	t.Run("cancel prevents firing", func(t *testing.T) {
		var d Deadline
		fired := false
		d.Start(epoch, func() { fired = true })

		assert.True(t, d.Cancel())
		assert.False(t, d.Cancel())
		assert.False(t, d.Fire(epoch.Add(time.Hour)))
		assert.False(t, fired)
		assert.True(t, d.When().IsZero())
	})

	t.Run("start replaces pending transition", func(t *testing.T) {
		var d Deadline
		var got []string
		d.Start(epoch.Add(time.Second), func() { got = append(got, "first") })
		d.Start(epoch.Add(2*time.Second), func() { got = append(got, "second") })

		assert.Equal(t, epoch.Add(2*time.Second), d.When())
		assert.False(t, d.Fire(epoch.Add(time.Second)))
		assert.True(t, d.Fire(epoch.Add(2*time.Second)))
		assert.Equal(t, []string{"second"}, got)
	})

	t.Run("callback may rearm", func(t *testing.T) {
		var d Deadline
		d.Start(epoch, func() {
			d.Start(epoch.Add(time.Second), func() {})
		})

		assert.True(t, d.Fire(epoch))
		assert.True(t, d.Pending())
	})
}
