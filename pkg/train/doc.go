// Package train connects gears into directed drive chains and propagates
// rotation through them.
//
// Gears live in an arena owned by a Train and are addressed by NodeID. Each
// gear belongs to at most one Chain; the chain refuses edges that would
// make its insertion-order scan revisit a gear. Chains are kept in a
// Registry owned by the same Train and are never merged or removed.
package train
