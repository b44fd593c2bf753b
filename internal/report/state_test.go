package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	t.Parallel()

	opened := sections(0).with(StateSettlement)

	tests := []struct {
		name    string
		current State
		seen    sections
		first   string
		second  string
		want    move
	}{
		{
			name:    "organization header",
			current: StateInitial,
			first:   "OrganizationNumber", second: "MerchantName",
			want: move{next: StateOrganization, step: stepHeader, section: StateOrganization},
		},
		{
			name:    "organization row falls back to initial",
			current: StateOrganization,
			first:   "999888777", second: "Payment Provider AS",
			want: move{next: StateInitial, step: stepRow, section: StateOrganization},
		},
		{
			name:    "company header",
			current: StateInitial,
			first:   "Name", second: "VisitingAddress",
			want: move{next: StateCompany, step: stepHeader, section: StateCompany},
		},
		{
			name:    "company row falls back to initial",
			current: StateCompany,
			first:   "Payment Provider AS", second: "Example Street 123",
			want: move{next: StateInitial, step: stepRow, section: StateCompany},
		},
		{
			name:    "settlement header",
			current: StateInitial,
			first:   "SettlementInfo", second: "SalesUnitName",
			want: move{next: StateSettlement, step: stepHeader, section: StateSettlement},
		},
		{
			name:    "settlement row",
			current: StateSettlement,
			seen:    opened,
			first:   "SettlementInfo", second: "Example Store",
			want: move{next: StateSettlement, step: stepRow, section: StateSettlement},
		},
		{
			name:    "fee header",
			current: StateSettlement,
			seen:    opened,
			first:   "FeeInfo", second: "SettlementDate",
			want: move{next: StateFee, step: stepHeader, section: StateFee},
		},
		{
			name:    "fee row",
			current: StateFee,
			seen:    opened.with(StateFee),
			first:   "FeeInfo", second: "12.04.2021",
			want: move{next: StateFee, step: stepRow, section: StateFee},
		},
		{
			name:    "bare fee sentinel opens the section",
			current: StateSettlement,
			seen:    opened,
			first:   "FeeInfo", second: "",
			want: move{next: StateFee, step: stepHeader, section: StateFee},
		},
		{
			name:    "fee header with another label opens the section",
			current: StateSettlement,
			seen:    opened,
			first:   "FeeInfo", second: "Dato",
			want: move{next: StateFee, step: stepHeader, section: StateFee},
		},
		{
			name:    "repeated fee header is not a row",
			current: StateFee,
			seen:    opened.with(StateFee),
			first:   "FeeInfo", second: "SettlementDate",
			want: move{next: StateFee, step: stepHeader, section: StateFee},
		},
		{
			name:    "transaction header",
			current: StateFee,
			first:   "TransactionInfo", second: "SalesDate",
			want: move{next: StateTransaction, step: stepHeader, section: StateTransaction},
		},
		{
			name:    "settlement row after another section",
			current: StateTransaction,
			seen:    opened.with(StateTransaction),
			first:   "SettlementInfo", second: "Example Store",
			want: move{next: StateSettlement, step: stepRow, section: StateSettlement},
		},
		{
			name:    "stray line is skipped",
			current: StateTransaction,
			first:   "Sum", second: "16511.71",
			want: move{next: StateTransaction, step: stepSkip},
		},
		{
			name:    "noise before any header",
			current: StateInitial,
			first:   "InvalidData", second: "Test",
			want: move{next: StateInitial, step: stepSkip},
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := transition(tc.current, tc.seen, tc.first, tc.second)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTransitionRejectsRowBeforeHeader(t *testing.T) {
	t.Parallel()

	for _, sec := range sentinelSections {
		if !sec.strictHeader {
			continue
		}
		_, err := transition(StateInitial, 0, sec.sentinel, "something")
		require.Error(t, err, sec.sentinel)
		assert.ErrorIs(t, err, ErrMalformedSection)

		var malformed *MalformedSectionError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, sec.sentinel, malformed.Sentinel)
		assert.Equal(t, sec.header, malformed.Header)
		assert.Equal(t, "something", malformed.Got)
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Initial", StateInitial.String())
	assert.Equal(t, "Transaction", StateTransaction.String())
	assert.Equal(t, "Unknown", State(42).String())
}
