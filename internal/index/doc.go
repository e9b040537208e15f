// Package index provides the read-only lookup structures the bootstrap
// samplers query in their innermost loops.
//
// A Set answers whether an exact column tuple appears as a row of a decision
// table. A Trie answers whether any row starts with a given prefix of that
// tuple, which lets a nested sampler abandon a branch as soon as no deeper
// match can exist.
//
// Both structures are keyed by fixed-width key structs (FARKey, FRRKey) whose
// field order is the nesting order of the sampler that queries them. They are
// built once and never mutated, so any number of goroutines may read them
// concurrently.
package index
