package repository

// Tx is an infra-defined transaction handle (pgx.Tx for Postgres).
// Repositories MUST accept nil for the non-transactional path.
type Tx interface{}
