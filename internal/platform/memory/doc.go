// Package memory provides an in-process store.Repository for tests, demos
// and the CLI's scratch mode. Transactions stage writes on a private copy
// and publish only the entities they touched on commit.
package memory
