package core

const (
	StateNoPeriod   PeriodStateKind = "NO_PERIOD"
	StateActive     PeriodStateKind = "ACTIVE"
	StateHistorical PeriodStateKind = "HISTORICAL"
)

type (
	// PeriodRecord is the unit of persistence: one budget period together
	// with all transactions assigned to it. External ids are unique within
	// one record.
	PeriodRecord struct {
		Period       BudgetPeriod   `json:"period"`
		Transactions TransactionSet `json:"transactions"`
	}

	PeriodStateKind string

	// PeriodState is the explicit lifecycle state for an account's periods.
	// Keeping the "is this period still writable" decision here, instead of
	// date comparisons scattered across call sites, is what makes past
	// periods reliably read-only.
	PeriodState struct {
		Kind   PeriodStateKind
		Record *PeriodRecord // nil for StateNoPeriod
	}
)

// NoPeriodState is the state when no period covers today.
func NoPeriodState() PeriodState {
	return PeriodState{Kind: StateNoPeriod}
}

// ActiveState marks the record whose interval contains today.
func ActiveState(record *PeriodRecord) PeriodState {
	return PeriodState{Kind: StateActive, Record: record}
}

// HistoricalState marks the most recent expired record. The record is
// read-only history from this point on.
func HistoricalState(record *PeriodRecord) PeriodState {
	return PeriodState{Kind: StateHistorical, Record: record}
}

// Writable reports whether the state's record may still accept transactions.
func (s PeriodState) Writable() bool {
	return s.Kind == StateActive
}
