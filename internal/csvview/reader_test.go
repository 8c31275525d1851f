package csvview

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSVFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "companies.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeRowsFile(t *testing.T, rows int) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("CompanyName,CompanyNumber,CompanyStatus\n")
	for i := 1; i <= rows; i++ {
		sb.WriteString("Company " + strconv.Itoa(i) + "," + strconv.Itoa(i) + ",active\n")
	}
	return writeCSVFile(t, sb.String())
}

func TestOpen_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestReader_HeadersAndCount(t *testing.T) {
	t.Parallel()

	r, err := Open(writeRowsFile(t, 5))
	require.NoError(t, err)

	headers, err := r.Headers()
	require.NoError(t, err)
	assert.Equal(t, []string{"CompanyName", "CompanyNumber", "CompanyStatus"}, headers)

	count, err := r.CountRows()
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestReader_BOMStripped(t *testing.T) {
	t.Parallel()

	r, err := Open(writeCSVFile(t, "\xEF\xBB\xBFName,Number\nA,1\n"))
	require.NoError(t, err)

	headers, err := r.Headers()
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Number"}, headers, "byte order mark must not leak into the first header")
}

func TestReader_EmptyFile(t *testing.T) {
	t.Parallel()

	r, err := Open(writeCSVFile(t, ""))
	require.NoError(t, err)

	headers, err := r.Headers()
	require.NoError(t, err)
	assert.Empty(t, headers)

	count, err := r.CountRows()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestReader_Page(t *testing.T) {
	t.Parallel()

	r, err := Open(writeRowsFile(t, 25))
	require.NoError(t, err)
	ctx := context.Background()

	first, err := r.Page(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, first.CurrentPage)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, 25, first.TotalRows)
	assert.Equal(t, 1, first.StartRow)
	assert.Equal(t, 10, first.EndRow)
	require.Len(t, first.Rows, 10)
	assert.Equal(t, []string{"Company 1", "1", "active"}, first.Rows[0])

	last, err := r.Page(ctx, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 21, last.StartRow)
	assert.Equal(t, 25, last.EndRow)
	require.Len(t, last.Rows, 5)
	assert.Equal(t, []string{"Company 25", "25", "active"}, last.Rows[4])
}

func TestReader_PageOutOfRange(t *testing.T) {
	t.Parallel()

	r, err := Open(writeRowsFile(t, 5))
	require.NoError(t, err)
	ctx := context.Background()

	cases := []struct {
		name string
		page int
		rows int
	}{
		{"zero page", 0, 10},
		{"negative page", -1, 10},
		{"past end", 2, 10},
		{"zero rows per page", 1, 0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := r.Page(ctx, tc.page, tc.rows)
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrInvalidPage))
		})
	}
}

func TestReader_PageNormalizesRaggedRows(t *testing.T) {
	t.Parallel()

	r, err := Open(writeCSVFile(t, "A,B,C\nshort\n1,2,3,4,5\n"))
	require.NoError(t, err)

	page, err := r.Page(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, []string{"short", "", ""}, page.Rows[0])
	assert.Equal(t, []string{"1", "2", "3"}, page.Rows[1])
}

func TestReader_PageContextCancelled(t *testing.T) {
	t.Parallel()

	r, err := Open(writeRowsFile(t, 5))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Page(ctx, 1, 10)
	require.Error(t, err)
	assert.True(t, eris.Is(err, context.Canceled))
}

func TestReader_EstimateRows(t *testing.T) {
	t.Parallel()

	path := writeCSVFile(t, strings.Repeat("x", 4500))
	r, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, 10, r.EstimateRows())
	assert.Equal(t, int64(4500), r.Size())
	assert.Equal(t, "companies.csv", r.Filename())
}

func TestReader_Stream(t *testing.T) {
	t.Parallel()

	content := "Name,Number\nA,1\n"
	r, err := Open(writeCSVFile(t, content))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Stream(&buf))
	assert.Equal(t, content, buf.String())
}
