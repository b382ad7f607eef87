// Package sqlstore implements the store contracts on top of database/sql.
//
// Queries are written once with '?' placeholders and rewritten by a Dialect,
// which also translates driver errors into store sentinels. The postgres and
// sqlite packages provide the concrete dialects and connection setup.
package sqlstore
