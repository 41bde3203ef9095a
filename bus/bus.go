// bus.go
package bus

import (
	"context"
	"sync"
	"sync/atomic"

	"latchfw/errcode"
)

// -----------------------------------------------------------------------------
// Tokens + Topics
// -----------------------------------------------------------------------------

// Token is a single element in a topic path.
// Tokens must be comparable scalars (strings, integers, bools).
type Token = any

// Topic is a sequence of tokens. "+" matches exactly one level and "#"
// matches the remainder (including none) when used in subscriptions.
type Topic []Token

const (
	wildOne  = "+"
	wildRest = "#"
)

// T builds a topic, panicking on non-comparable tokens.
func T(tokens ...Token) Topic {
	for _, tok := range tokens {
		checkToken(tok)
	}
	return Topic(tokens)
}

func checkToken(tok Token) {
	switch tok.(type) {
	case string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, bool:
	default:
		panic("bus: topic token must be a comparable scalar")
	}
}

func (t Topic) Len() int       { return len(t) }
func (t Topic) At(i int) Token { return t[i] }

// Append returns a new topic with tokens appended; t is not modified.
func (t Topic) Append(tokens ...Token) Topic {
	out := make(Topic, 0, len(t)+len(tokens))
	out = append(out, t...)
	for _, tok := range tokens {
		checkToken(tok)
		out = append(out, tok)
	}
	return out
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

// CanReply reports whether the sender asked for a reply.
func (m *Message) CanReply() bool { return m != nil && len(m.ReplyTo) > 0 }

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection // owning connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Trie nodes
// -----------------------------------------------------------------------------

// node indexes subscriptions by pattern (wildcards are ordinary keys here).
type node struct {
	children map[Token]*node
	subs     []*Subscription
}

// rnode indexes retained messages by concrete topic.
type rnode struct {
	children map[Token]*rnode
	msg      *Message
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu       sync.Mutex
	root     *node
	retained *rnode
	qLen     int
	replySeq atomic.Uint32
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{
		root:     &node{},
		retained: &rnode{},
		qLen:     queueLen,
	}
}

// NewMessage builds a message for topic.
func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// addSubscription inserts a subscription into the trie and replays retained
// messages that match its pattern.
func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range sub.topic {
		if n.children == nil {
			n.children = make(map[Token]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	n.subs = append(n.subs, sub)

	b.retained.walk(sub.topic, func(m *Message) { deliver(sub, m) })
}

// Publish delivers a message to all matching subscribers.
// Retained messages are stored; a retained nil payload clears the slot.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg.Retained {
		b.storeRetained(msg)
	}
	b.root.match(msg.Topic, func(s *Subscription) { deliver(s, msg) })
}

func (b *Bus) storeRetained(msg *Message) {
	n := b.retained
	var path []*rnode
	for _, tok := range msg.Topic {
		if n.children == nil {
			if msg.Payload == nil {
				return
			}
			n.children = make(map[Token]*rnode)
		}
		child, ok := n.children[tok]
		if !ok {
			if msg.Payload == nil {
				return
			}
			child = &rnode{}
			n.children[tok] = child
		}
		path = append(path, n)
		n = child
	}
	if msg.Payload != nil {
		n.msg = msg
		return
	}
	n.msg = nil
	for i := len(msg.Topic) - 1; i >= 0; i-- {
		parent, key := path[i], msg.Topic[i]
		child := parent.children[key]
		if child.msg != nil || len(child.children) > 0 {
			break
		}
		delete(parent.children, key)
	}
}

// deliver is non-blocking: a full queue drops its oldest message.
func deliver(s *Subscription, m *Message) {
	select {
	case s.ch <- m:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- m:
	default:
	}
}

// match calls fn for each subscription whose pattern matches topic.
func (n *node) match(topic Topic, fn func(*Subscription)) {
	if c := n.children[wildRest]; c != nil {
		for _, s := range c.subs {
			fn(s)
		}
	}
	if len(topic) == 0 {
		for _, s := range n.subs {
			fn(s)
		}
		return
	}
	if c := n.children[topic[0]]; c != nil {
		c.match(topic[1:], fn)
	}
	if topic[0] != wildOne {
		if c := n.children[wildOne]; c != nil {
			c.match(topic[1:], fn)
		}
	}
}

// walk calls fn for each retained message whose topic matches pattern.
func (r *rnode) walk(pattern Topic, fn func(*Message)) {
	if len(pattern) == 0 {
		if r.msg != nil {
			fn(r.msg)
		}
		return
	}
	switch pattern[0] {
	case wildRest:
		r.each(fn)
	case wildOne:
		for _, c := range r.children {
			c.walk(pattern[1:], fn)
		}
	default:
		if c := r.children[pattern[0]]; c != nil {
			c.walk(pattern[1:], fn)
		}
	}
}

func (r *rnode) each(fn func(*Message)) {
	if r.msg != nil {
		fn(r.msg)
	}
	for _, c := range r.children {
		c.each(fn)
	}
}

// unsubscribe removes a subscription from the trie and prunes empty nodes.
func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	var stack []*node
	for _, t := range sub.topic {
		child, ok := n.children[t]
		if !ok {
			return
		}
		stack = append(stack, n)
		n = child
	}

	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}

	for i := len(sub.topic) - 1; i >= 0; i-- {
		parent := stack[i]
		key := sub.topic[i]
		child := parent.children[key]
		if len(child.subs) == 0 && len(child.children) == 0 {
			delete(parent.children, key)
		} else {
			break
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus  *Bus
	subs []*Subscription
	mu   sync.Mutex
	id   string
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) {
	c.bus.Publish(msg)
}

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	for _, tok := range topic {
		checkToken(tok)
	}
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	c.bus.addSubscription(sub)
	return sub
}

// Unsubscribe removes a subscription owned by this connection and closes
// its channel. Unsubscribing twice is a no-op.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.mu.Lock()
	found := false
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}
	c.bus.unsubscribe(sub)
	close(sub.ch)
}

// Disconnect closes all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}

// -----------------------------------------------------------------------------
// Request–Reply
// -----------------------------------------------------------------------------

// Request assigns a private reply topic to msg, subscribes to it and
// publishes msg. The caller owns the returned subscription.
func (c *Connection) Request(msg *Message) *Subscription {
	msg.ReplyTo = T("_reply", c.id, int(c.bus.replySeq.Add(1)))
	sub := c.Subscribe(msg.ReplyTo)
	c.Publish(msg)
	return sub
}

// RequestWait publishes msg and blocks for the first reply or ctx expiry.
func (c *Connection) RequestWait(ctx context.Context, msg *Message) (*Message, error) {
	sub := c.Request(msg)
	defer c.Unsubscribe(sub)

	select {
	case <-ctx.Done():
		return nil, errcode.Timeout
	case m, ok := <-sub.Channel():
		if !ok {
			return nil, errcode.Error
		}
		return m, nil
	}
}

// Reply answers req on its ReplyTo topic. It is a no-op if req expects none.
func (c *Connection) Reply(req *Message, payload any, retained bool) {
	if !req.CanReply() {
		return
	}
	c.Publish(c.NewMessage(req.ReplyTo, payload, retained))
}
