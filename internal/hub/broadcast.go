package hub

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

const (
	fullSyncInterval = 5 * time.Second
	deltaCountSync   = 100
	publishBuffer    = 256
)

// Broadcaster folds published messages into a PadState and forwards them to
// the hub's clients. Publish may be called from the poll goroutine; it never
// blocks.
type Broadcaster struct {
	hub      *Hub
	messages chan *Message

	mu         sync.Mutex
	state      PadState
	seq        int64
	deltaCount int
}

func NewBroadcaster(h *Hub) *Broadcaster {
	return &Broadcaster{
		hub:      h,
		messages: make(chan *Message, publishBuffer),
		state:    newPadState(),
	}
}

// Publish queues msg for broadcasting. When the queue is full the message
// is dropped; the next full sync repairs client state.
func (b *Broadcaster) Publish(msg *Message) {
	select {
	case b.messages <- msg:
	default:
		log.Printf("Broadcast queue full, dropping %s message", msg.Type)
	}
}

// Run starts the broadcaster loop. Should be run in a goroutine.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-b.messages:
			for _, data := range b.process(msg) {
				b.hub.Broadcast(data)
			}

		case <-ticker.C:
			if data := b.full(); data != nil {
				b.hub.Broadcast(data)
			}
		}
	}
}

// process applies msg to the state and returns the encoded messages to send,
// none when msg carries nothing new. Every deltaCountSync messages a full
// state follows the message.
func (b *Broadcaster) process(msg *Message) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.state.apply(msg) {
		return nil
	}

	var out [][]byte
	b.seq++
	msg.Seq = b.seq
	if data := encode(msg); data != nil {
		out = append(out, data)
	}

	b.deltaCount++
	if b.deltaCount >= deltaCountSync {
		b.deltaCount = 0
		b.seq++
		if data := encode(NewFullMessage(b.seq, b.state.clone())); data != nil {
			out = append(out, data)
		}
	}
	return out
}

func (b *Broadcaster) full() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.state.Connected {
		return nil
	}
	b.seq++
	b.deltaCount = 0
	return encode(NewFullMessage(b.seq, b.state.clone()))
}

// State returns a copy of the current pad state.
func (b *Broadcaster) State() *PadState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.clone()
}

// SendInitialState sends the current full state to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	b.mu.Lock()
	b.seq++
	data := encode(NewFullMessage(b.seq, b.state.clone()))
	b.mu.Unlock()

	if data == nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func encode(msg *Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", msg.Type, err)
		return nil
	}
	return data
}
