package control

import "sync/atomic"

// Mailbox is a single-slot intent mailbox shared between the button handlers
// and the set-point task. Post overwrites whatever is pending.
type Mailbox struct {
	v atomic.Int32
}

// Post stores an intent. Safe to call from an interrupt/event goroutine.
func (m *Mailbox) Post(i Intent) {
	m.v.Store(int32(i))
}

// Peek returns the pending intent without clearing it.
func (m *Mailbox) Peek() Intent {
	return Intent(m.v.Load())
}

// Clear resets the mailbox to IntentNone only if it still holds seen.
// An intent posted after seen was read stays pending.
func (m *Mailbox) Clear(seen Intent) bool {
	return m.v.CompareAndSwap(int32(seen), int32(IntentNone))
}
