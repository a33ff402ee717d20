package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateToUnix(t *testing.T) {
	ts, err := DateToUnix("2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, int64(1704153600), ts)
}

func TestDateToUnixRejectsGarbage(t *testing.T) {
	_, err := DateToUnix("02/01/2024")
	assert.Error(t, err)

	_, err = DateToUnix("")
	assert.Error(t, err)

	_, err = DateToUnix("2024-13-01")
	assert.Error(t, err)
}

func TestUnixToDateRoundTrip(t *testing.T) {
	dates := []string{"2020-02-29", "2024-01-02", "2025-12-31"}
	for _, date := range dates {
		ts, err := DateToUnix(date)
		require.NoError(t, err)
		assert.Equal(t, date, UnixToDate(ts))
	}
}
