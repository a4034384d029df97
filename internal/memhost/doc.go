// Package memhost is an in-process editor host.
//
// It keeps documents in memory, answers the queries of host.View, and
// delivers lifecycle notifications to a Handler the way a real editor
// would: one at a time, with edits submitted during a notification applied
// only after the handler returns, each producing its own notification.
// The wordcount CLI uses it for one-shot statistics, and the tests use it
// to drive the plugin end to end.
package memhost
