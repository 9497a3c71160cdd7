package validate

import "github.com/c360/rstream/stream"

// Publisher wraps a publisher so every subscriber handed to Subscribe is
// validated. Each subscription gets its own wrapper and report identity;
// the reporter and stage label are shared.
type Publisher[T any] struct {
	inner stream.Publisher[T]
	opts  options
}

var _ stream.Publisher[int] = (*Publisher[int])(nil)

// NewPublisher wraps inner with contract checking. A nil inner panics.
func NewPublisher[T any](inner stream.Publisher[T], opts ...Option) *Publisher[T] {
	if inner == nil {
		panic("validate: NewPublisher called with nil publisher")
	}
	return &Publisher[T]{inner: inner, opts: applyOptions(opts)}
}

// Subscribe validates the subscriber and passes it through.
func (p *Publisher[T]) Subscribe(sub stream.Subscriber[T]) {
	if sub == nil {
		panic("validate: Subscribe called with nil subscriber")
	}
	p.inner.Subscribe(newSubscriberWith(sub, p.opts))
}
