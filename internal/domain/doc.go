// Package domain contains the core study entities and value objects: decks,
// flashcards, their spaced repetition scheduling state and the quality grades
// a learner assigns while reviewing. It has no knowledge of storage or
// transport.
package domain
