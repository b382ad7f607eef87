// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// The root package manages the deck and card catalog. Review scheduling lives
// in card_review and read-side study queries in study.
//
// Error Handling:
//   - Expected conditions are reported with sentinel errors (errors.Is)
//   - Unexpected failures are wrapped in CardServiceError, keeping the
//     underlying *store.StoreError in the chain
//   - The API layer maps both to HTTP status codes
package service
