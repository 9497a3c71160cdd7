// Package processor provides pipeline stages that are subscriber and
// publisher at once: Map transforms elements in flight, Unicast buffers them
// between a producer and a slower subscriber.
//
// # Overview
//
// A stage couples two lifecycles. Upstream termination propagates downstream,
// downstream cancellation propagates upstream, and a fault inside the stage
// fails both sides with a single OnError. Each stage serves exactly one
// downstream subscriber; a second Subscribe is refused with
// ErrAlreadySubscribed.
//
// Stages can be wired in either order. Demand requested before an upstream
// is attached accumulates inside the stage and is replayed once OnSubscribe
// arrives, so pipeline assembly is not order-sensitive.
//
// # Demand Coupling
//
// Map relays demand untouched: it buffers nothing, so one downstream request
// becomes exactly one upstream request and upstream emissions map one to one
// onto downstream deliveries.
//
// Unicast decouples the two sides with a bounded ring buffer and translates
// downstream demand into credit-based upstream flow control. It requests the
// buffer capacity when the upstream attaches and one replacement credit per
// element it delivers or drops. The outstanding credit never exceeds the
// free buffer space, so a compliant upstream cannot overrun the stage.
//
// # Producer Side Without a Stream
//
// Unicast also works as a stream entry point: code that is not itself a
// publisher calls Emit, Complete, and Fail directly. Emit never blocks; when
// the buffer is full the overflow policy decides between failing the stream
// (Reject) and dropping an element (DropOldest, DropNewest).
//
//	stage, err := processor.NewUnicast[Event](256,
//	    processor.WithOverflow(buffer.DropOldest),
//	)
//	if err != nil {
//	    return err
//	}
//	stage.Subscribe(sink)
//	for ev := range feed {
//	    if err := stage.Emit(ev); err != nil {
//	        break
//	    }
//	}
//	stage.Complete()
//
// # Failure Semantics
//
// A Map transform that returns an error or panics produces exactly one
// OnError downstream followed by a Cancel upstream; the panic value travels
// inside a consumer-classified error wrapping ErrHandlerPanic.
//
// Unicast holds a producer terminal back until the buffer has drained, so a
// fast producer's Complete does not outrun its own elements. Contract
// violations and Reject overflow do not wait: they discard buffered elements
// and terminate immediately.
//
// # Thread Safety
//
// All methods on both stages are safe for concurrent use. Downstream
// delivery is serialized; on Unicast it runs on the same trampoline drain
// the publisher package uses, so reentrant Request calls from OnNext extend
// the running drain instead of recursing.
//
// # Known Limitations
//
//  1. Map assumes a serialized upstream, as the contract requires; it does
//     not add serialization for upstreams that overlap their signals.
//  2. A Unicast element discarded by cancellation or a preempting error is
//     gone; there is no redelivery.
//
// # See Also
//
//   - Package publisher for the sources these stages subscribe to.
//   - Package buffer for the ring buffer and its overflow policies.
package processor
