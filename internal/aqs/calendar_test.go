package aqs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqsfetch/aqsfetch/internal/aqs"
)

func TestIsLeapYear(t *testing.T) {
	assert.True(t, aqs.IsLeapYear(2000))
	assert.False(t, aqs.IsLeapYear(1900))
	assert.True(t, aqs.IsLeapYear(2024))
	assert.False(t, aqs.IsLeapYear(2023))
}

func TestLastDayOfMonth(t *testing.T) {
	tests := []struct {
		year, month int
		want        int
	}{
		{2024, 2, 29},
		{2023, 2, 28},
		{2024, 4, 30},
		{2024, 1, 31},
		{2024, 12, 31},
		{2023, 9, 30},
	}
	for _, tt := range tests {
		got, err := aqs.LastDayOfMonth(tt.year, tt.month)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "year %d month %d", tt.year, tt.month)
	}
}

func TestLastDayOfMonth_InvalidMonth(t *testing.T) {
	_, err := aqs.LastDayOfMonth(2024, 13)
	require.Error(t, err)
	assert.ErrorIs(t, err, aqs.ErrInvalidMonth)

	_, err = aqs.LastDayOfMonth(2024, 0)
	assert.ErrorIs(t, err, aqs.ErrInvalidMonth)
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, aqs.IsValidDate(2024, 2, 29))
	assert.False(t, aqs.IsValidDate(2023, 2, 29))
	assert.True(t, aqs.IsValidDate(2020, 12, 31))
	assert.False(t, aqs.IsValidDate(2020, 4, 31))
	assert.False(t, aqs.IsValidDate(2020, 13, 1))
	assert.False(t, aqs.IsValidDate(2020, 1, 0))
}

func TestCheckDate(t *testing.T) {
	now := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)

	t.Run("rejects pre-1970", func(t *testing.T) {
		_, err := aqs.CheckDate("19690101", now)
		assert.ErrorIs(t, err, aqs.ErrDateOutOfBounds)
	})

	t.Run("rejects future date", func(t *testing.T) {
		_, err := aqs.CheckDate("20270829", now)
		assert.ErrorIs(t, err, aqs.ErrDateOutOfBounds)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		_, err := aqs.CheckDate("2020-01", now)
		assert.ErrorIs(t, err, aqs.ErrInvalidDateFormat)

		_, err = aqs.CheckDate("20200230", now)
		assert.ErrorIs(t, err, aqs.ErrInvalidDateFormat)
	})

	t.Run("sparse era advisory", func(t *testing.T) {
		adv, err := aqs.CheckDate("19750601", now)
		require.NoError(t, err)
		require.NotNil(t, adv)
		assert.Contains(t, adv.Message, "1980")
	})

	t.Run("recent date advisory", func(t *testing.T) {
		adv, err := aqs.CheckDate("20260801", now)
		require.NoError(t, err)
		require.NotNil(t, adv)
		assert.Contains(t, adv.Message, "18 months")
	})

	t.Run("recent first-half advisory", func(t *testing.T) {
		adv, err := aqs.CheckDate("20260301", now)
		require.NoError(t, err)
		require.NotNil(t, adv)
		assert.Contains(t, adv.Message, "18 months")
	})

	t.Run("settled date has no advisory", func(t *testing.T) {
		adv, err := aqs.CheckDate("20100615", now)
		require.NoError(t, err)
		assert.Nil(t, adv)
	})

	t.Run("1970 itself has no sparse advisory", func(t *testing.T) {
		adv, err := aqs.CheckDate("19700101", now)
		require.NoError(t, err)
		assert.Nil(t, adv)
	})
}
