package aqs_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqsfetch/aqsfetch/internal/aqs"
)

func f64(v float64) *float64 { return &v }

func sampleRow(date, timeOfDay string, value float64) aqs.SampleRow {
	return aqs.SampleRow{
		DateLocal:          date,
		TimeLocal:          timeOfDay,
		StateCode:          "24",
		CountyCode:         "31",
		SiteNumber:         "3001",
		POC:                "1",
		ParameterCode:      "44201",
		SampleMeasurement:  f64(value),
		UnitsOfMeasureCode: "008",
		MethodCode:         "087",
		SampleDurationCode: "1",
	}
}

func TestNormalize_PPMToPPB(t *testing.T) {
	row := sampleRow("2020-06-15", "13:00", 0.045)
	row.UnitsOfMeasureCode = "007"

	table, err := aqs.Normalize([]aqs.SampleRow{row})
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.InDelta(t, 45.0, table[0].Value, 1e-9)
}

func TestNormalize_PPMNumericUnitCode(t *testing.T) {
	// The API serves units_of_measure_code as the number 7 on some rows.
	row := sampleRow("2020-06-15", "13:00", 0.045)
	row.UnitsOfMeasureCode = "7"

	table, err := aqs.Normalize([]aqs.SampleRow{row})
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.InDelta(t, 45.0, table[0].Value, 1e-9)
}

func TestNormalize_NonPPMUnchanged(t *testing.T) {
	table, err := aqs.Normalize([]aqs.SampleRow{sampleRow("2020-06-15", "13:00", 12.5)})
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, 12.5, table[0].Value)
}

func TestNormalize_SiteID(t *testing.T) {
	table, err := aqs.Normalize([]aqs.SampleRow{sampleRow("2020-06-15", "13:00", 1)})
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, "240313001", table[0].SiteID)
}

func TestNormalize_TimestampKeepsMinutes(t *testing.T) {
	table, err := aqs.Normalize([]aqs.SampleRow{sampleRow("2020-06-15", "13:45", 1)})
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, time.Date(2020, time.June, 15, 13, 45, 0, 0, time.UTC), table[0].Timestamp)
}

func TestNormalize_DropsRows(t *testing.T) {
	missing := sampleRow("2020-06-15", "01:00", 0)
	missing.SampleMeasurement = nil

	flagged := sampleRow("2020-06-15", "02:00", 2)
	flagged.Qualifier = "9 - Negative value detected"

	validated := sampleRow("2020-06-15", "03:00", 3)
	validated.Qualifier = "V - Validated Value"

	plain := sampleRow("2020-06-15", "04:00", 4)

	table, err := aqs.Normalize([]aqs.SampleRow{missing, flagged, validated, plain})
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, 3.0, table[0].Value)
	assert.Equal(t, 4.0, table[1].Value)
}

func TestNormalize_SortsByTimestamp(t *testing.T) {
	rows := []aqs.SampleRow{
		sampleRow("2020-06-15", "14:00", 2),
		sampleRow("2020-06-15", "01:00", 1),
		sampleRow("2020-06-14", "23:00", 0),
	}
	table, err := aqs.Normalize(rows)
	require.NoError(t, err)
	require.Len(t, table, 3)
	assert.True(t, table[0].Timestamp.Before(table[1].Timestamp))
	assert.True(t, table[1].Timestamp.Before(table[2].Timestamp))
}

func TestNormalize_Idempotent(t *testing.T) {
	rows := []aqs.SampleRow{
		sampleRow("2020-06-15", "01:00", 1),
		sampleRow("2020-06-15", "02:00", 2),
	}
	first, err := aqs.Normalize(rows)
	require.NoError(t, err)
	second, err := aqs.Normalize(rows)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalize_BadTimestamp(t *testing.T) {
	_, err := aqs.Normalize([]aqs.SampleRow{sampleRow("06/15/2020", "13:00", 1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse timestamp")
}

func TestSampleRow_FlexibleDecode(t *testing.T) {
	payload := `{
		"date_local": "2020-06-15",
		"time_local": "13:00",
		"state_code": 24,
		"county_code": "031",
		"site_number": 3001,
		"poc": 1,
		"parameter_code": "44201",
		"sample_measurement": 0.045,
		"units_of_measure_code": 7,
		"method_code": 87,
		"sample_duration_code": "1",
		"qualifier": null
	}`

	var row aqs.SampleRow
	require.NoError(t, json.Unmarshal([]byte(payload), &row))
	assert.Equal(t, aqs.FlexString("24"), row.StateCode)
	assert.Equal(t, aqs.FlexString("031"), row.CountyCode)
	assert.Equal(t, aqs.FlexString("7"), row.UnitsOfMeasureCode)
	assert.Equal(t, "", row.Qualifier)
	require.NotNil(t, row.SampleMeasurement)

	table, err := aqs.Normalize([]aqs.SampleRow{row})
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, "240313001", table[0].SiteID)
	assert.InDelta(t, 45.0, table[0].Value, 1e-9)
}
