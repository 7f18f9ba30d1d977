// Package ir provides the dialect-neutral intermediate representation of SQL
// statements consumed by the generators.
//
// This package contains type definitions and JSON decoding only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Statements, values, constraints, conditions and alter actions are
//     sealed interfaces; generators switch over them exhaustively
//   - Numbers are exact decimals, never binary floats
//   - Object key order of INSERT values and UPDATE assignments is preserved
//   - All JSON tags use snake_case
//   - Meta.Raw is the single passthrough that bypasses quoting
package ir
