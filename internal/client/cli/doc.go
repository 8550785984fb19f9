// Package cli is the interactive front end of the authkeeper client.
//
// On start the persisted session is evaluated: an active or remembered
// session signs the user in without a prompt. A background watcher
// re-evaluates the session periodically and reports when it expires.
//
// Commands
//
//	help      list commands
//	register  create an account
//	login     sign in (username or email)
//	logout    sign out locally
//	status    show session and server state
//	whoami    show the signed-in profile
//	passwd    change password
//	account   change email and/or username
//	verify    confirm an email verification token
//	exit      leave the program
package cli
