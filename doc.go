// Package relstore implements the core of a single-process relational
// storage engine: fixed-schema heap files made of equal-sized slotted
// pages, a buffer pool that mediates every page access under strict
// two-phase locking with timeout-based deadlock recovery, and a
// pull-based iterator pipeline of query operators composed over it.
//
// relstore deliberately does not parse SQL, run a shell, persist a
// catalog, recover from crashes, or build indexes. The catalog is an
// in-memory registry populated by the embedding host; everything else
// needed to scan, filter, join, aggregate, and mutate tables is here.
package relstore
