package core

import "encoding/json"

// TransactionSet stores a period's transactions keyed by transaction id
// while preserving insertion order. Accessors return copies so callers never
// alias the stored records; the only mutation paths are Append and Replace.
//
// The set marshals to and from a plain JSON array, which keeps the persisted
// PeriodRecord format a simple {period, transactions[]} document.
type TransactionSet struct {
	byID  map[string]Transaction
	order []string
}

// NewTransactionSet builds a set from transactions in order. Later
// duplicates of the same transaction id replace earlier ones.
func NewTransactionSet(txs []Transaction) TransactionSet {
	s := TransactionSet{byID: make(map[string]Transaction, len(txs))}
	for _, tx := range txs {
		s.append(tx)
	}
	return s
}

func (s *TransactionSet) append(tx Transaction) {
	if s.byID == nil {
		s.byID = make(map[string]Transaction)
	}
	if _, exists := s.byID[tx.ID]; !exists {
		s.order = append(s.order, tx.ID)
	}
	s.byID[tx.ID] = tx
}

// Append adds a transaction at the end of the set.
func (s *TransactionSet) Append(tx Transaction) {
	s.append(tx)
}

// Replace swaps the stored transaction with the same id. It reports false
// when the id is unknown.
func (s *TransactionSet) Replace(tx Transaction) bool {
	if s.byID == nil {
		return false
	}
	if _, ok := s.byID[tx.ID]; !ok {
		return false
	}
	s.byID[tx.ID] = tx
	return true
}

// Get returns a copy of the transaction with the given id.
func (s TransactionSet) Get(id string) (Transaction, bool) {
	tx, ok := s.byID[id]
	return tx, ok
}

// Len returns the number of transactions in the set.
func (s TransactionSet) Len() int { return len(s.order) }

// All returns the transactions as a fresh slice in insertion order.
func (s TransactionSet) All() []Transaction {
	out := make([]Transaction, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// ExternalIDs returns the set of external ids currently present.
func (s TransactionSet) ExternalIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.order))
	for _, id := range s.order {
		ids[s.byID[id].ExternalID] = struct{}{}
	}
	return ids
}

// MarshalJSON encodes the set as a JSON array in insertion order.
func (s TransactionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.All())
}

// UnmarshalJSON decodes a JSON array of transactions.
func (s *TransactionSet) UnmarshalJSON(data []byte) error {
	var txs []Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return err
	}
	*s = NewTransactionSet(txs)
	return nil
}
