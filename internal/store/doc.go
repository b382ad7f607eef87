// Package store defines the persistence contract the study engine queries:
// card and deck stores, the repository that groups them under a transaction
// boundary, and the error vocabulary every backend maps its failures onto.
//
// Backends live under internal/platform (postgres, sqlite, memory). Ordering
// of query results is not part of the contract; callers sort.
package store
