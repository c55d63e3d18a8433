package database

// Batch groups independent single-record writes into one round trip.
//
// The store commits each statement on its own record; there is no
// multi-record transaction to lean on. A failure mid-batch leaves earlier
// statements applied, so callers supply only writes that are individually
// idempotent and safe in any prefix, such as membership-list repairs:
//
//	batch := NewBatch()
//	batch.Add(query1, vars1)
//	batch.Add(query2, vars2)
//	batch.Execute(ctx, db)
//
// Ordered workflows that need compensation on partial failure live in the
// service layer, where they run against repository interfaces.

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

// Batch accumulates single-record statements and executes them in one round
// trip. Variables are automatically namespaced ($id -> $v1_id) so statements
// from different sources cannot collide.
type Batch struct {
	statements []string
	vars       map[string]interface{}
	varCounter uint64
}

// NewBatch creates a new batch
func NewBatch() *Batch {
	return &Batch{
		statements: make([]string, 0),
		vars:       make(map[string]interface{}),
	}
}

// Add adds a statement to the batch, namespacing variables to avoid collisions
// Returns the namespaced variable map for reference
func (b *Batch) Add(query string, vars map[string]interface{}) map[string]string {
	varMapping := make(map[string]string)
	newQuery := query

	for varName, varValue := range vars {
		counter := atomic.AddUint64(&b.varCounter, 1)
		newVarName := fmt.Sprintf("v%d_%s", counter, varName)

		// Replace $varName with $newVarName in query
		newQuery = strings.ReplaceAll(newQuery, "$"+varName, "$"+newVarName)

		b.vars[newVarName] = varValue
		varMapping[varName] = newVarName
	}

	b.statements = append(b.statements, newQuery)
	return varMapping
}

// AddRaw adds a raw statement without variable substitution
func (b *Batch) AddRaw(query string) {
	b.statements = append(b.statements, query)
}

// Build returns the combined query and merged variables
func (b *Batch) Build() (string, map[string]interface{}) {
	if len(b.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, stmt := range b.statements {
		sb.WriteString(stmt)
		if !strings.HasSuffix(strings.TrimSpace(stmt), ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}

	return sb.String(), b.vars
}

// Len returns the number of statements in the batch
func (b *Batch) Len() int {
	return len(b.statements)
}

// Execute runs all statements in one round trip. Statements commit
// individually; callers must tolerate a prefix having been applied.
func (b *Batch) Execute(ctx context.Context, db Database) error {
	query, vars := b.Build()
	if query == "" {
		return nil
	}

	_, err := db.Query(ctx, query, vars)
	return err
}
