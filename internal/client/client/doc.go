// Package client talks to a Sui full node.
//
// # Overview
//
// Two transports are used:
//  1. EventClient queries the event log over JSON-RPC (suix_queryEvents)
//     and walks every page of a Move event type with the node's cursor.
//  2. ObjectClient reads live objects over the gRPC ledger service
//     (sui.rpc.v2.LedgerService). An object that no longer exists is
//     reported as a *DeletedError instead of a transport failure.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, ErrObjectDeleted and
// ErrBadCursor. Transport errors keep the original cause in the chain.
//
// Both clients are safe for concurrent use. All operations accept a
// context.Context and honor cancellation.
package client
