// Package portfolio computes point-in-time valuation statistics for a list of
// assets. Everything here is a pure function of its inputs: no package state,
// no I/O, safe for concurrent use.
package portfolio
