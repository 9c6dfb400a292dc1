package mqtt

import "log"

// message is a serialized publish held for replay after reconnection.
type message struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog is a fixed-capacity FIFO of messages queued while disconnected.
// When full, the oldest message is overwritten.
// Not safe for concurrent use; the caller holds the publisher lock.
type backlog struct {
	msgs    []message
	next    int // slot the next push writes
	n       int
	dropped int // messages overwritten since the last drain
}

func newBacklog(capacity int) *backlog {
	return &backlog{msgs: make([]message, capacity)}
}

func (b *backlog) push(m message) {
	capacity := len(b.msgs)
	if b.n == capacity {
		if b.dropped == 0 {
			log.Printf("mqtt: backlog full (%d messages), dropping oldest", capacity)
		}
		b.dropped++
	} else {
		b.n++
	}
	b.msgs[b.next] = m
	b.next = (b.next + 1) % capacity
}

// drain returns queued messages oldest first and empties the backlog.
func (b *backlog) drain() []message {
	if b.n == 0 {
		return nil
	}

	capacity := len(b.msgs)
	out := make([]message, 0, b.n)
	first := (b.next - b.n + capacity) % capacity
	for i := 0; i < b.n; i++ {
		out = append(out, b.msgs[(first+i)%capacity])
	}

	b.next, b.n, b.dropped = 0, 0, 0
	return out
}

func (b *backlog) len() int {
	return b.n
}
