package report

// State is the section the scanner is currently reading.
type State int

const (
	StateInitial State = iota
	StateOrganization
	StateCompany
	StateSettlement
	StateFee
	StateTransaction
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "Initial"
	case StateOrganization:
		return "Organization"
	case StateCompany:
		return "Company"
	case StateSettlement:
		return "Settlement"
	case StateFee:
		return "Fee"
	case StateTransaction:
		return "Transaction"
	}
	return "Unknown"
}

// Section markers as they appear in the first two fields of a line.
const (
	organizationLabel = "OrganizationNumber"
	companyLabel      = "Name"

	settlementSentinel  = "SettlementInfo"
	feeSentinel         = "FeeInfo"
	transactionSentinel = "TransactionInfo"

	settlementHeader  = "SalesUnitName"
	feeHeader         = "SettlementDate"
	transactionHeader = "SalesDate"
)

// sentinelSection describes a section whose every line starts with the
// same sentinel and whose header repeats it with a label in field two.
// Sections with strictHeader set are only opened by that exact label; the
// others are opened by the first sentinel line of any shape.
type sentinelSection struct {
	state        State
	sentinel     string
	header       string
	strictHeader bool
}

var sentinelSections = []sentinelSection{
	{StateSettlement, settlementSentinel, settlementHeader, true},
	{StateFee, feeSentinel, feeHeader, false},
	{StateTransaction, transactionSentinel, transactionHeader, true},
}

// step is what the scanner does with the current line.
type step int

const (
	stepSkip step = iota
	stepHeader
	stepRow
)

// sections is a set of states whose header has been seen.
type sections uint8

func (s sections) has(st State) bool       { return s&(1<<uint(st)) != 0 }
func (s sections) with(st State) sections { return s | 1<<uint(st) }

// move is the outcome of feeding one line to the state machine.
type move struct {
	next    State // state after the line
	step    step
	section State // section the header or row belongs to
}

// transition decides what a line means given the current state. It looks
// only at the first two fields and never touches the scanner, so every
// rule can be exercised in isolation.
//
// RULES:
//   - "OrganizationNumber" and "Name" open a single-row section. The next
//     line that is not itself a transition is its data row, after which
//     the machine falls back to StateInitial.
//   - A sentinel line whose second field is the section's header label
//     opens that section. A header may repeat.
//   - A sentinel line without the header label is a data row when its
//     section was opened earlier.
//   - Otherwise the first FeeInfo line opens the Fee section whatever its
//     second field holds, while SettlementInfo and TransactionInfo give a
//     MalformedSectionError. The returned error carries no line number;
//     the caller adds it.
//   - Anything else is skipped.
func transition(current State, seen sections, first, second string) (move, error) {
	switch first {
	case organizationLabel:
		return move{next: StateOrganization, step: stepHeader, section: StateOrganization}, nil
	case companyLabel:
		return move{next: StateCompany, step: stepHeader, section: StateCompany}, nil
	}

	for _, sec := range sentinelSections {
		if first != sec.sentinel {
			continue
		}
		if second == sec.header {
			return move{next: sec.state, step: stepHeader, section: sec.state}, nil
		}
		if current == sec.state || seen.has(sec.state) {
			return move{next: sec.state, step: stepRow, section: sec.state}, nil
		}
		if !sec.strictHeader {
			return move{next: sec.state, step: stepHeader, section: sec.state}, nil
		}
		return move{next: current}, &MalformedSectionError{
			Sentinel: sec.sentinel,
			Header:   sec.header,
			Got:      second,
		}
	}

	switch current {
	case StateOrganization, StateCompany:
		return move{next: StateInitial, step: stepRow, section: current}, nil
	}
	return move{next: current, step: stepSkip}, nil
}
