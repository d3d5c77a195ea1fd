// Package inventory implements the reservoir ledger.
//
// The Ledger tracks how much liquid remains in each ingredient's
// bottle. Every pour debits it, refills reset it to capacity, and the
// availability check reads it before a drink is attempted.
//
// # Accounting rules
//
//   - Debits clamp at zero. The machine cannot pour what is not there,
//     so a debit past empty records an empty bottle, not an error.
//   - First touch initialises a level with the ingredient's class
//     default capacity (700 ml spirits, 1000 ml mixers) and zero
//     content.
//   - Persistence failures do not undo in-memory changes. The pour
//     already happened; callers log ErrLedgerWrite and continue.
//
// All Ledger methods are safe for concurrent use.
package inventory
