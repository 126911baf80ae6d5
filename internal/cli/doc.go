// Package cli provides the interactive loadlog command-line client.
//
// It drives a Session and a Journal from a simple REPL: register or unlock
// the journal, add, list, show, edit and delete events, change the
// passphrase, export and import backups, and edit settings. Every command
// counts as activity for the auto-lock.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// input ends.
package cli
