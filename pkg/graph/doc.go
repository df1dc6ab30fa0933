// Package graph defines the geometry graph model: an ordered list of
// parameters and an ordered list of items (primitives, booleans and
// transforms) that reference previously declared items.
//
// Item identity (ItemID) is fixed once created. Parameters and item
// attributes may change between recompute cycles; the order of Items is
// the evaluation order and is never rearranged by downstream stages.
package graph
