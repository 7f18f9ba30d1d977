// Package harness runs SQL conformance scenarios.
//
// A scenario is a YAML file listing cases. Each case names IR statements,
// either inline or by reference to a document on disk, and states what every
// dialect must produce for them: exact SQL, SQL containing given fragments,
// or an error of a given kind.
//
// # Scenario Format
//
//	name: shop_schema
//	description: "Orders table across dialects"
//	cases:
//	  - name: create_orders
//	    statement:
//	      kind: create_table
//	      name: orders
//	      columns:
//	        - {name: id, type: int, primary_key: true}
//	    expect:
//	      mysql: "CREATE TABLE `orders` (\n  `id` INT PRIMARY KEY\n);"
//	      postgres:
//	        contains: ["\"id\" INTEGER PRIMARY KEY"]
//	      sqlite: {}
//	  - name: seed
//	    document: ../docs/seed.cue
//	    expect:
//	      mysql:
//	        error: unsupported_operation
//
// A plain string expectation is the exact SQL; surrounding whitespace is
// ignored so block scalars can be used. An empty mapping only requires
// generation to succeed. Error kinds are the values of sqlerr.Kind.
//
// Document paths are relative to the scenario file. Multi-statement inputs
// are generated as a script, one statement per line.
//
// # Golden Files
//
// Every run produces a snapshot of the generated SQL per case and dialect.
// Snapshots live next to the scenarios in golden/<file>.golden. Tests compare
// them with goldie; the CLI compares and rewrites them with "sqlir test".
package harness
