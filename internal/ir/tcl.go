package ir

// Begin starts a transaction.
type Begin struct {
	Meta
}

// Commit commits the current transaction.
type Commit struct {
	Meta
}

// Rollback rolls back the current transaction, or to a savepoint when
// ToSavepoint is set.
type Rollback struct {
	Meta
	ToSavepoint string `json:"to_savepoint,omitempty"`
}

// Savepoint creates a named savepoint.
type Savepoint struct {
	Meta
	Name string `json:"name"`
}

// ReleaseSavepoint releases a named savepoint.
type ReleaseSavepoint struct {
	Meta
	Name string `json:"name"`
}

// IsolationLevel is a transaction isolation level.
type IsolationLevel string

const (
	ReadUncommitted IsolationLevel = "READ UNCOMMITTED"
	ReadCommitted   IsolationLevel = "READ COMMITTED"
	RepeatableRead  IsolationLevel = "REPEATABLE READ"
	Serializable    IsolationLevel = "SERIALIZABLE"
)

// Valid reports whether l is a known level.
func (l IsolationLevel) Valid() bool {
	switch l {
	case ReadUncommitted, ReadCommitted, RepeatableRead, Serializable:
		return true
	}
	return false
}

// SetTransaction sets characteristics of the next transaction.
type SetTransaction struct {
	Meta
	Isolation IsolationLevel `json:"isolation,omitempty"`
	ReadOnly  bool           `json:"read_only,omitempty"`
}

func (*Begin) Category() Category            { return TCL }
func (*Commit) Category() Category           { return TCL }
func (*Rollback) Category() Category         { return TCL }
func (*Savepoint) Category() Category        { return TCL }
func (*ReleaseSavepoint) Category() Category { return TCL }
func (*SetTransaction) Category() Category   { return TCL }

func (*Begin) Operation() Operation            { return OpBegin }
func (*Commit) Operation() Operation           { return OpCommit }
func (*Savepoint) Operation() Operation        { return OpSavepoint }
func (*ReleaseSavepoint) Operation() Operation { return OpReleaseSavepoint }
func (*SetTransaction) Operation() Operation   { return OpSetTransaction }

// Operation is ROLLBACK TO SAVEPOINT when a savepoint is named.
func (r *Rollback) Operation() Operation {
	if r.ToSavepoint != "" {
		return OpRollbackSavepoint
	}
	return OpRollback
}

func (*Begin) statement()            {}
func (*Commit) statement()           {}
func (*Rollback) statement()         {}
func (*Savepoint) statement()        {}
func (*ReleaseSavepoint) statement() {}
func (*SetTransaction) statement()   {}
