// Package study answers the read-side questions of a study session: which
// cards are due, which new cards to introduce, how much of a deck is
// mastered, and how a session currently looks.
package study
