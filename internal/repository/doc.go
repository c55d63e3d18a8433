// Package repository implements the data access layer for the Handy API.
//
// The repository package contains all database operations using SurrealDB.
// Each repository struct handles CRUD operations for a specific domain entity.
//
// # Repository Pattern
//
// All repositories follow a consistent pattern:
//
//   - Constructor function (NewXxxRepository) accepts a database connection
//   - Methods implement specific data operations (Create, GetByID, Update, Delete, etc.)
//   - SurrealQL queries are used for all database interactions
//   - Results are parsed and mapped to model structs
//
// # List Mutation Semantics
//
// Account membership lists are mutated with set-style operations so that
// retried writes converge instead of corrupting state:
//
//   - AddToList uses array::union: re-adding a present id is a no-op
//   - RemoveFromList uses array::complement: removing an absent id is a no-op
//
// # Query Patterns
//
// Common query patterns used:
//
//   - Parameterized queries with $variable syntax for security
//   - type::record() for safe ID handling
//   - time::now() for automatic timestamps
//   - ORDER BY created_on, id for deterministic pagination
//
// # Example Usage
//
//	repo := NewListingRepository(db)
//	listing, err := repo.GetByID(ctx, "listing:abc123")
//	if err != nil {
//	    if errors.Is(err, database.ErrNotFound) {
//	        // Handle not found
//	    }
//	    return err
//	}
package repository
