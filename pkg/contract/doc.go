// Package contract publishes the registration endpoint as an OpenAPI 3
// document derived from the validation schema, and checks request bodies
// against it.
package contract
