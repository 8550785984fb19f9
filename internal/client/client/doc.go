// Package client talks to the authkeeper server over HTTP.
//
// The Client interface is the contract the orchestrator depends on;
// HTTPClient implements it with JSON bodies wrapped in api.Response. Bearer
// tokens are added by the transport package, so HTTPClient never sees them.
//
// Server error codes become sentinel errors from package common (and
// *password.PolicyError for policy violations), matched with errors.Is.
// Transport failures, including timeouts, wrap common.ErrNetwork.
package client
