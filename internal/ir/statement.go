package ir

// Category is the top-level statement family.
type Category string

const (
	DDL Category = "DDL"
	DML Category = "DML"
	DQL Category = "DQL"
	DCL Category = "DCL"
	TCL Category = "TCL"
)

// Operation names a statement inside its category by its leading keywords,
// e.g. "CREATE TABLE" or "ROLLBACK TO SAVEPOINT".
type Operation string

const (
	OpCreateTable     Operation = "CREATE TABLE"
	OpCreateIndex     Operation = "CREATE INDEX"
	OpCreateView      Operation = "CREATE VIEW"
	OpCreateDatabase  Operation = "CREATE DATABASE"
	OpCreateSchema    Operation = "CREATE SCHEMA"
	OpCreateSequence  Operation = "CREATE SEQUENCE"
	OpCreateTrigger   Operation = "CREATE TRIGGER"
	OpCreateProcedure Operation = "CREATE PROCEDURE"
	OpCreateFunction  Operation = "CREATE FUNCTION"
	OpCreateRole      Operation = "CREATE ROLE"
	OpCreateUser      Operation = "CREATE USER"
	OpCreateEvent     Operation = "CREATE EVENT"
	OpAlterTable      Operation = "ALTER TABLE"
	OpDrop            Operation = "DROP"
	OpTruncate        Operation = "TRUNCATE"

	OpInsert Operation = "INSERT"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"

	OpSelect Operation = "SELECT"

	OpGrant  Operation = "GRANT"
	OpRevoke Operation = "REVOKE"

	OpBegin             Operation = "BEGIN"
	OpCommit            Operation = "COMMIT"
	OpRollback          Operation = "ROLLBACK"
	OpSavepoint         Operation = "SAVEPOINT"
	OpReleaseSavepoint  Operation = "RELEASE SAVEPOINT"
	OpSetTransaction    Operation = "SET TRANSACTION"
	OpRollbackSavepoint Operation = "ROLLBACK TO SAVEPOINT"
)

// Statement is a sealed interface over every statement the generators know.
// Concrete statements are used by pointer and embed Meta.
type Statement interface {
	Category() Category
	Operation() Operation

	// RawSQL returns the passthrough text, or "" when the statement must be
	// generated.
	RawSQL() string

	statement() // Sealed
}

// Meta is embedded by every statement.
type Meta struct {
	// Raw, when non-empty, is returned verbatim by the dispatcher instead of
	// generating SQL. It bypasses every quoting and validation rule and must
	// only carry trusted text.
	Raw string `json:"raw_sql,omitempty"`
}

// RawSQL implements Statement.
func (m Meta) RawSQL() string { return m.Raw }
