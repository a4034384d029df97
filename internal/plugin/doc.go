// Package plugin binds the statistics engine and the capitalization
// transform to an editor's view lifecycle.
//
// A Plugin keeps one Session per open view, keyed by view id, so counts
// for different documents never mix. The host calls the On* hooks one at a
// time:
//
//	OnViewOpened    -> refresh counts, create status items
//	OnEditApplied   -> refresh counts, then run the capitalization transform
//	OnViewClosed    -> drop the session
//	OnSaved         -> no-op
//	OnConfigChanged -> no-op
//
// Hooks never fail because of a bad query: such failures are delivered to
// the configured Sink as a Report and the previous counts stay visible.
// Only a lost connection to the host (host.ErrTransport) is returned.
package plugin
