package services

import "context"

// ValueTransfer is the escrow collaborator that moves funds. Collect verifies
// a bettor's client-submitted deposit transaction before the stake is
// credited; it moves no value itself, so it is safe to call inside a database
// transaction. Disburse pays out of custody and must only run after the claim
// has been committed. Both return an opaque transaction reference.
type ValueTransfer interface {
	Collect(ctx context.Context, from, depositTxSig string, amount uint64) (string, error)
	Disburse(ctx context.Context, to string, amount uint64) (string, error)
}
