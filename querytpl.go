// Package querytpl builds SQL query strings from templates with typed
// placeholder markers and optional blocks.
//
// Markers consume parameters left to right, one parameter per marker:
//
//	SELECT * FROM users WHERE id = ?d AND name = ?
//
// # Basic Usage
//
//	engine := querytpl.MustNew()
//	query, err := engine.Build("SELECT * FROM users WHERE id = ?d AND name = ?",
//	    querytpl.Int(5), querytpl.String("bob"))
//	// query: SELECT * FROM users WHERE id = 5 AND name = 'bob'
//
// BuildArgs accepts plain Go values:
//
//	query, err := engine.BuildArgs("SELECT ?# FROM users WHERE id IN (?a)",
//	    []string{"name", "email"}, []int{1, 2, 3})
//	// query: SELECT `name`, `email` FROM users WHERE id IN (1, 2, 3)
//
// # Markers
//
//	?   value rendered by its own type (strings quoted, NULL, 1/0 for bools)
//	?d  integer
//	?f  float
//	?a  list as comma-separated values, map as `key` = value assignments
//	?#  identifier or list of identifiers, backtick-quoted
//
// # Optional Blocks
//
// Text between { and } is dropped, along with its markers, when any marker
// inside it receives the skip signal:
//
//	q, _ := engine.Build("SELECT name FROM users WHERE id = ?d{ AND block = ?d}",
//	    querytpl.Int(1), querytpl.Skip())
//	// q: SELECT name FROM users WHERE id = 1
//
// Blocks do not nest.
//
// # Error Handling
//
// Every failure aborts the build with no partial output. Errors carry the
// template position and wrap a sentinel for classification:
//
//	_, err := engine.Build("SELECT ?d", querytpl.String("x"))
//	if errors.Is(err, querytpl.ErrConversion) {
//	    // ...
//	}
//
// # Query Catalog
//
// Named, versioned templates can be kept in a QueryStorage (memory,
// filesystem or PostgreSQL) and built by name:
//
//	storage, _ := querytpl.OpenStorage("filesystem", "./queries")
//	engine := querytpl.MustNew(querytpl.WithStorage(storage))
//	q, err := engine.BuildNamed(ctx, "users.by_id", querytpl.Int(7))
package querytpl
