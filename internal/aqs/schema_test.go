package aqs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqsfetch/aqsfetch/internal/aqs"
)

func TestServices(t *testing.T) {
	services := aqs.Services()
	assert.Contains(t, services, "sampleData")
	assert.Contains(t, services, "dailyData")
	assert.Contains(t, services, "list")
	assert.Contains(t, services, "qaBlanks")
	assert.Contains(t, services, "transactionsSample")
	assert.IsIncreasing(t, services)
}

func TestFilters(t *testing.T) {
	filters, err := aqs.Filters("sampleData")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bySite", "byCounty", "byState", "byBox", "byCBSA"}, filters)

	filters, err = aqs.Filters("list")
	require.NoError(t, err)
	assert.Contains(t, filters, "countiesByState")
	assert.Contains(t, filters, "parametersByClass")
}

func TestFilters_UnknownService(t *testing.T) {
	_, err := aqs.Filters("sampledata")
	require.Error(t, err)

	var uerr *aqs.UnknownServiceError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "sampledata", uerr.Service)
	assert.Contains(t, uerr.Valid, "sampleData")
}

func TestParamsFor(t *testing.T) {
	spec, err := aqs.ParamsFor("sampleData", "byState")
	require.NoError(t, err)
	assert.Equal(t, []string{"state", "param", "bdate", "edate"}, spec.Required)
	assert.ElementsMatch(t, []string{"duration", "cbdate", "cedate"}, spec.Optional)

	spec, err = aqs.ParamsFor("dailyData", "byBox")
	require.NoError(t, err)
	assert.Equal(t, []string{"minlat", "maxlat", "minlon", "maxlon", "param", "bdate", "edate"}, spec.Required)
	assert.NotContains(t, spec.Optional, "duration")

	spec, err = aqs.ParamsFor("list", "sitesByCounty")
	require.NoError(t, err)
	assert.Equal(t, []string{"state", "county"}, spec.Required)
	assert.Empty(t, spec.Optional)
}

func TestParamsFor_UnknownFilter(t *testing.T) {
	// byPQAO belongs to the QA services, not sampleData.
	_, err := aqs.ParamsFor("sampleData", "byPQAO")
	require.Error(t, err)

	var ferr *aqs.UnknownFilterError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "byPQAO", ferr.Filter)
	assert.Contains(t, ferr.Valid, "byState")
}

func TestParamsFor_QAServices(t *testing.T) {
	spec, err := aqs.ParamsFor("qaBlanks", "byPQAO")
	require.NoError(t, err)
	assert.Equal(t, []string{"pqao", "param", "bdate", "edate"}, spec.Required)
}
