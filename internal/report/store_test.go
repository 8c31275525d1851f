package report

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/phoenix-cli/internal/model"
	"github.com/sells-group/phoenix-cli/pkg/companieshouse"
)

func storedReport(number string) *model.Report {
	return &model.Report{
		Company: companieshouse.Company{CompanyNumber: number},
	}
}

func TestStore_GetBeforePut(t *testing.T) {
	t.Parallel()

	store := NewStore()
	_, err := store.Get("12345678")

	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoReport))
}

func TestStore_GetMatch(t *testing.T) {
	t.Parallel()

	store := NewStore()
	want := storedReport("12345678")
	store.Put(want)

	got, err := store.Get("12345678")
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestStore_GetMismatch(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Put(storedReport("12345678"))

	_, err := store.Get("87654321")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoReport))
}

func TestStore_LastWriteWins(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Put(storedReport("11111111"))
	latest := storedReport("22222222")
	store.Put(latest)

	_, err := store.Get("11111111")
	require.Error(t, err)

	got, err := store.Get("22222222")
	require.NoError(t, err)
	assert.Same(t, latest, got)
}
