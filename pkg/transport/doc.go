// Package transport issues the outbound registration request. A Registrar
// turns a FormInput into exactly one JSON POST and reports the settled call as
// a Result: either a Response (2xx) or an error describing a transport failure
// (TransportError) or a rejected request (StatusError).
package transport
