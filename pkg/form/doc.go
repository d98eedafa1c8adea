// Package form coordinates validation for a dynamic set of fields. A
// Coordinator owns the attached fields, a duplicate-free validation queue
// that cascades to dependent fields, and a single sequential driver that
// validates one field at a time until the queue drains. When a round
// completes the coordinator recomputes aggregate validity and notifies the
// host through the configured callbacks.
//
// Fields are owned by the host. They attach themselves through the Binder
// capability and call back into it when their value changes:
//
//	coord := form.New(form.WithRules(rules.NewRegistry()), form.OnValidChanged(fn))
//	_ = coord.Attach(email)
//	_ = coord.Attach(password)
//	coord.Mount(ctx)
//	_ = coord.Wait(ctx)
//
// Aggregate validity is only authoritative while IsValidating reports false.
// Notifications are delivered in order on a dedicated goroutine; a round
// completion that is overtaken by a newer enqueue is discarded.
package form
