// Package models defines the core domain models for hisaab.
//
// # Models
//
//   - Transaction: a single income or expense entry for one user
//   - Debt: an individual debt tracked outside any group, settled in
//     partial payments
//   - Group: a shared-expense group; the aggregate root that embeds its
//     Members and Expenses and is written back as one unit
//   - Member: a group participant with a cached running balance
//   - Expense: an immutable shared expense with its per-member splits
//   - User: a registered account
//
// # Design Principles
//
//  1. **Documents, not rows**: every model round-trips through JSON as the
//     body of a document in the storage layer. The store assigns ids, so
//     the `id` field is omitempty and filled in after reads.
//  2. **Caller-set timestamps**: createdAt/updatedAt are RFC 3339 values
//     set at write time by the service layer, never by the store.
//  3. **Cached balances**: Member.Balance is a running total maintained
//     incrementally by the ledger fold. The authoritative source is the
//     append-only Expense log; balances can always be rebuilt from it.
//  4. **Avoid circular references**: members and splits are referenced by
//     key strings, never pointers.
package models
