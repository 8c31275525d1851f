package main

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCompanyNumbers(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "numbers.txt")
	content := "# batch of companies to scan\n12345678\n\n  87654321  \n# trailing comment\nSC123456\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	numbers, err := readCompanyNumbers(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"12345678", "87654321", "SC123456"}, numbers)
}

func TestReadCompanyNumbers_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := readCompanyNumbers(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}

func TestQueryInt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		url  string
		want int
	}{
		{"present", "/api/csv/data?page=7", 7},
		{"missing", "/api/csv/data", 1},
		{"not a number", "/api/csv/data?page=seven", 1},
		{"negative passes through", "/api/csv/data?page=-2", -2},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest("GET", tc.url, nil)
			assert.Equal(t, tc.want, queryInt(req, "page", 1))
		})
	}
}

func TestHumanSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.00 MB", humanSize(0))
	assert.Equal(t, "1.00 MB", humanSize(1<<20))
	assert.Equal(t, "512.00 MB", humanSize(512<<20))
	assert.Equal(t, "1.50 GB", humanSize(3<<29))
}
