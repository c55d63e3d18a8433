// Package database provides database connectivity for the Handy API.
//
// The database package abstracts SurrealDB operations and provides
// a consistent interface for data access across the application.
//
// # Database Interface
//
// The Database interface defines core operations:
//
//	type Database interface {
//	    Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
//	    QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)
//	    Execute(ctx context.Context, query string, vars map[string]interface{}) error
//	    Close() error
//	}
//
// # Atomicity
//
// Writes are atomic per record only. Cross-record workflows order their
// writes in the service layer; independent idempotent writes can be
// grouped into one round trip with the Batch utility in batch.go.
//
// # Error Types
//
// Standard error types for data operations:
//
//   - ErrNotFound: Record does not exist
//   - ErrDuplicate: Unique constraint violation
//   - ErrConnection: Database connection failed
//
// # Query Helpers
//
// Helper functions for common query patterns:
//
//   - Query: Execute query returning multiple results
//   - QueryOne: Execute query expecting single result
//   - Execute: Execute query with no return value
package database
