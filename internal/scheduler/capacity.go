package scheduler

import "time"

// WeekdayBudget maps weekday codes to the maximum study minutes of that day.
// Missing weekdays have no budget.
type WeekdayBudget map[Weekday]int

// For returns the budget of the weekday of d.
func (b WeekdayBudget) For(d time.Time) int {
	return b[WeekdayOf(d)]
}

// CapacityTracker accumulates the minutes committed per date during one run.
// It is shared by every subject of the run and is not safe for concurrent use.
type CapacityTracker struct {
	used map[time.Time]int
}

// NewCapacityTracker returns an empty ledger.
func NewCapacityTracker() *CapacityTracker {
	return &CapacityTracker{used: make(map[time.Time]int)}
}

// Used returns the minutes already committed on d.
func (c *CapacityTracker) Used(d time.Time) int {
	return c.used[DateOf(d)]
}

// Commit adds minutes to d. Non-positive values are ignored so usage never decreases.
func (c *CapacityTracker) Commit(d time.Time, minutes int) {
	if minutes <= 0 {
		return
	}
	c.used[DateOf(d)] += minutes
}

// Snapshot copies the ledger keyed by YYYY-MM-DD.
func (c *CapacityTracker) Snapshot() map[string]int {
	out := make(map[string]int, len(c.used))
	for k, v := range c.used {
		out[k.Format(DateLayout)] = v
	}
	return out
}
