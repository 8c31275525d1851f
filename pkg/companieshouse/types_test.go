package companieshouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompany_AddressString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		addr Address
		want string
	}{
		{
			"all components",
			Address{AddressLine1: "1 High Street", AddressLine2: "Westminster", Locality: "London", PostalCode: "SW1A 1AA"},
			"1 High Street Westminster London SW1A 1AA",
		},
		{
			"locality and postcode only",
			Address{Locality: "Leeds", PostalCode: "LS1 4AP"},
			"Leeds LS1 4AP",
		},
		{
			"empty address",
			Address{},
			"",
		},
		{
			"region and country are excluded",
			Address{AddressLine1: "1 High Street", Region: "Greater London", Country: "England"},
			"1 High Street",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := Company{RegisteredOfficeAddress: tt.addr}
			assert.Equal(t, tt.want, c.AddressString())
		})
	}
}

func TestSuspiciousStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []string{
		StatusDissolved, StatusLiquidation, StatusInsolvencyProceedings,
		StatusReceivership, StatusAdministration,
	} {
		assert.True(t, SuspiciousStatus(status), status)
	}

	assert.False(t, SuspiciousStatus(StatusActive))
	assert.False(t, SuspiciousStatus(""))
	assert.False(t, SuspiciousStatus("voluntary-arrangement"))
}
