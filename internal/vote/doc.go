// Package vote holds the core domain types: candidates, the roster of
// candidates eligible in a run, the tally of accumulated counts, and the
// parser for the device's line protocol.
//
// The roster is fixed at startup. It is either the built-in default or
// loaded from a YAML file, and nothing discovers candidates dynamically:
// a vote for an ID outside the roster is rejected downstream, not added.
package vote
