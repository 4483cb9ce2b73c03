//go:build tools
// +build tools

// Package tools pins the development tooling used while working on signon.
// The tools are installed with `go install` and deliberately kept out of
// go.mod; nothing here is a runtime dependency.
package tools

// Live reload during local development:
//
//	go install github.com/air-verse/air@v1.63.0
//
// See https://github.com/air-verse/air for configuration.
