// Package harness runs YAML-described HTTP scenarios against an
// http.Handler.
//
// A scenario is an ordered flow of steps. Each step either sends one
// request and checks the response, or runs a named hook registered by the
// test (for example to read a token from a fake mailbox). Values captured
// from one response are substituted into later steps as ${name}.
package harness
