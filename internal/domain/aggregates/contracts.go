package aggregates

// WriteTxOwnership defines who owns write transaction boundaries.
type WriteTxOwnership string

const (
	// WriteTxOwnedByCaller means the caller begins, commits and rolls back
	// the transaction handle explicitly.
	WriteTxOwnedByCaller WriteTxOwnership = "caller_owned"
	// WriteTxOwnedByAggregate means write methods manage their own transactions.
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
)

// ReadPolicy defines how aggregate contracts should expose reads.
type ReadPolicy string

const (
	// ReadPolicyCommittedOnly means reads never observe uncommitted writes.
	ReadPolicyCommittedOnly ReadPolicy = "committed_only"
	// ReadPolicyTableRepoQueries keeps broad read-model queries on table repos.
	ReadPolicyTableRepoQueries ReadPolicy = "table_repo_queries"
)

// Contract describes aggregate-level policy expectations.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	Notes            string
}

// Aggregate is the common marker for all aggregate contracts.
type Aggregate interface {
	Contract() Contract
}

// RequiresCallerOwnedTx returns true when callers drive Begin/Commit/Rollback.
func (c Contract) RequiresCallerOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByCaller
}
