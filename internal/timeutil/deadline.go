package timeutil

import "time"

// Deadline is a delayed transition owned by a single-threaded loop. Nothing
// fires on its own: the owner calls Fire once per frame with the current
// time. At most one transition is pending; Start replaces any earlier one.
//
// The zero value is an idle deadline.
type Deadline struct {
	at    time.Time
	fn    func()
	armed bool
}

// Start schedules fn to run at the first Fire call at or after at,
// cancelling whatever was pending.
func (d *Deadline) Start(at time.Time, fn func()) {
	d.at = at
	d.fn = fn
	d.armed = true
}

// Cancel drops the pending transition. It reports whether one was pending.
func (d *Deadline) Cancel() bool {
	was := d.armed
	d.at = time.Time{}
	d.fn = nil
	d.armed = false
	return was
}

// Pending reports whether a transition is scheduled.
func (d *Deadline) Pending() bool {
	return d.armed
}

// When returns the scheduled time, or the zero time when idle.
func (d *Deadline) When() time.Time {
	return d.at
}

// Fire runs the pending transition if it is due. The deadline is disarmed
// before fn runs, so fn may Start a new one.
func (d *Deadline) Fire(now time.Time) bool {
	if !d.armed || now.Before(d.at) {
		return false
	}
	fn := d.fn
	d.Cancel()
	if fn != nil {
		fn()
	}
	return true
}
