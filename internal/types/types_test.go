package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", q.Date)

	q, err = ParseQuery(" 2024-06-10 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", q.Date, "surrounding blanks are not part of the query")

	for _, in := range []string{"not-a-date", "", "2024-13-40", "2024-02-30", "10.06.2024", "2024-06-10T00:00:00"} {
		_, err := ParseQuery(in)
		var invalid *InvalidDateError
		if assert.Error(t, err, in) {
			assert.True(t, errors.As(err, &invalid), in)
			assert.Equal(t, in, invalid.Input)
		}
	}
}

func TestNewEntryRequiredFields(t *testing.T) {
	_, ok := NewEntry("10.06.2024", "Sak A", "  ", "", "")
	assert.False(t, ok, "blank unit must be rejected")

	e, ok := NewEntry(" 10.06.2024 ", "Sak A", "Enhet 1", "", "  ")
	require.True(t, ok)
	assert.Equal(t, "10.06.2024", e.Date)
	assert.Nil(t, e.ArchiveLink)
	assert.Nil(t, e.DocumentLink)
	assert.Equal(t, "", e.Archive())
}

func TestDisplayTitle(t *testing.T) {
	e := Entry{Title: "Søknad om\n  dispensasjon\\nGnr 12"}
	assert.Equal(t, "Søknad om / dispensasjon / Gnr 12", e.DisplayTitle())
	assert.Equal(t, "Søknad om\n  dispensasjon\\nGnr 12", e.Title)
}

func TestErrorsUnwrap(t *testing.T) {
	nav := &NavigationError{URL: "https://example.com", Err: errors.New("boom")}
	failed := &FetchFailedError{Date: "2024-06-10", Err: nav}

	var target *NavigationError
	require.True(t, errors.As(failed, &target))
	assert.Equal(t, "https://example.com", target.URL)
	assert.Contains(t, failed.Error(), "2024-06-10")
}
