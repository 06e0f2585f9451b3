// Package server hosts the sign-up form over HTTP for local development. It
// renders the page, accepts form posts through a per-request controller,
// publishes the registration contract and can mount an in-memory backend
// that speaks the same contract, throttled per client IP.
package server
