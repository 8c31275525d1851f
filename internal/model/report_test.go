package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/phoenix-cli/pkg/companieshouse"
)

func TestFlagSet_DeduplicatesPreservingOrder(t *testing.T) {
	t.Parallel()

	var flags FlagSet
	flags.Add("Director SMITH, John linked to OLD ACME LTD (dissolved)")
	flags.Add("Director JONES, Amy linked to ACME SUPPLIES LTD (liquidation)")
	flags.Add("Director SMITH, John linked to OLD ACME LTD (dissolved)")

	assert.Equal(t, 2, flags.Len())
	assert.Equal(t, []string{
		"Director SMITH, John linked to OLD ACME LTD (dissolved)",
		"Director JONES, Amy linked to ACME SUPPLIES LTD (liquidation)",
	}, flags.All())
}

func TestFlagSet_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	var flags FlagSet
	flags.Add("a")
	flags.Add("b")

	data, err := json.Marshal(flags)
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(data))

	var decoded FlagSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, flags.All(), decoded.All())

	// Duplicates collapse on decode too.
	var fromDupes FlagSet
	require.NoError(t, json.Unmarshal([]byte(`["x","x","y"]`), &fromDupes))
	assert.Equal(t, []string{"x", "y"}, fromDupes.All())
}

func TestFlagSet_EmptyMarshalsAsArray(t *testing.T) {
	t.Parallel()

	var flags FlagSet
	data, err := json.Marshal(flags)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFlagSet_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	var flags FlagSet
	flags.Add("a")
	flags.Add("b")

	data, err := yaml.Marshal(flags)
	require.NoError(t, err)
	assert.YAMLEq(t, "- a\n- b\n", string(data))

	var decoded FlagSet
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, flags.All(), decoded.All())

	var fromDupes FlagSet
	require.NoError(t, yaml.Unmarshal([]byte("[x, x, y]"), &fromDupes))
	assert.Equal(t, []string{"x", "y"}, fromDupes.All())
}

func TestReport_YAMLKeysAndFlags(t *testing.T) {
	t.Parallel()

	report := Report{
		ScanID:    "scan-1",
		ScannedAt: time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
		Company: companieshouse.Company{
			CompanyNumber: "12345678",
			CompanyName:   "ACME TRADING LTD",
		},
		Assessment: RiskAssessment{RiskLevel: RiskLevelLow},
	}
	report.Flags.Add("Director SMITH, John linked to OLD ACME LTD (dissolved)")

	data, err := yaml.Marshal(report)
	require.NoError(t, err)
	out := string(data)

	// Keys use the same snake_case names as the json output.
	assert.Contains(t, out, "scan_id: scan-1")
	assert.Contains(t, out, "company_number: \"12345678\"")
	assert.Contains(t, out, "risk_level: LOW")
	assert.NotContains(t, out, "scanid:")
	assert.NotContains(t, out, "companynumber:")

	// Flag strings survive into the yaml rendering.
	assert.Contains(t, out, "Director SMITH, John linked to OLD ACME LTD (dissolved)")
	assert.NotContains(t, out, "flags: {}")
}
