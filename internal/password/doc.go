// Package password hashes and verifies user passwords and enforces the
// password policy.
//
// The same Policy value is used by the server before persisting a
// credential and by the client before sending a registration or password
// change, so both sides always agree on which passwords are acceptable.
package password
