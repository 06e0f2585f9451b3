// Package testsupport holds shared fixtures for package tests: a recording
// registrar, a snapshot recorder and template capture helpers.
package testsupport
