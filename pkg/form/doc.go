// Package form implements the validated sign-up controller: it owns field
// values and inline errors, gates submission on a clean validation pass and
// guarantees at most one registration request in flight per controller.
package form
