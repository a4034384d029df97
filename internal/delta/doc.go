// Package delta describes one atomic mutation of a document.
//
// A Delta is a list of elements applied against a base document of
// BaseLen bytes: Copy elements keep a run of the base verbatim, Insert
// elements add new text. Reading the elements in order yields the new
// document. Copies must be ascending and non-overlapping; any base bytes
// not copied are deleted.
//
//	base:  "hello world"
//	delta: copy[0,11) insert "!"
//	new:   "hello world!"
//
// The JSON form is the one used on the plugin wire:
//
//	{"base_len":11,"els":[{"copy":[0,11]},{"insert":"!"}]}
package delta
