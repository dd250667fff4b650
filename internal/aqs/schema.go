package aqs

import "sort"

// ParamSpec describes which query parameters a (service, filter) pair
// accepts: Required must all be present, Optional may appear alongside them.
type ParamSpec struct {
	Required []string
	Optional []string
}

type serviceSpec struct {
	filters  []string
	optional []string
}

// Filter groups shared across services.
var (
	metaFilters = []string{"isAvailable", "revisionHistory", "fieldsByService", "issues"}
	listFilters = []string{"states", "countiesByState", "sitesByCounty", "cbsas", "classes", "parametersByClass", "pqaos", "mas"}
	dataFilters = []string{"bySite", "byCounty", "byState", "byBox", "byCBSA"}
	qaFilters   = []string{"bySite", "byCounty", "byState", "byMA", "byPQAO"}
)

// serviceRegistry mirrors the AQS API's published service/filter matrix.
var serviceRegistry = map[string]serviceSpec{
	"metaData":      {filters: metaFilters},
	"list":          {filters: listFilters},
	"monitors":      {filters: dataFilters},
	"sampleData":    {filters: dataFilters, optional: []string{ParamDuration, ParamCBDate, ParamCEDate}},
	"dailyData":     {filters: dataFilters, optional: []string{ParamCBDate, ParamCEDate}},
	"quarterlyData": {filters: dataFilters, optional: []string{ParamCBDate, ParamCEDate}},
	"annualData":    {filters: dataFilters, optional: []string{ParamCBDate, ParamCEDate}},

	"qaAnnualPerformanceEvaluations": {filters: qaFilters},
	"qaBlanks":                       {filters: qaFilters},
	"qaCollocatedAssessments":        {filters: qaFilters},
	"qaFlowRateVerifications":        {filters: qaFilters},
	"qaFlowRateAudits":               {filters: qaFilters},
	"qaOnePointQcRawData":            {filters: qaFilters},
	"qaPepAudits":                    {filters: qaFilters},

	"transactionsSample":                         {filters: qaFilters[:4], optional: []string{ParamCBDate, ParamCEDate}},
	"transactionsQaAnnualPerformanceEvaluations": {filters: qaFilters},
}

// filterRequired lists the required parameters per filter. Filters missing
// from the map require nothing.
var filterRequired = map[string][]string{
	"fieldsByService":   {"service"},
	"countiesByState":   {ParamState},
	"sitesByCounty":     {ParamState, ParamCounty},
	"parametersByClass": {ParamClass},

	"bySite":   {ParamState, ParamCounty, ParamSite, ParamParam, ParamBeginDate, ParamEndDate},
	"byCounty": {ParamState, ParamCounty, ParamParam, ParamBeginDate, ParamEndDate},
	"byState":  {ParamState, ParamParam, ParamBeginDate, ParamEndDate},
	"byBox":    {ParamMinLat, ParamMaxLat, ParamMinLon, ParamMaxLon, ParamParam, ParamBeginDate, ParamEndDate},
	"byCBSA":   {ParamCBSA, ParamParam, ParamBeginDate, ParamEndDate},
	"byPQAO":   {ParamPQAO, ParamParam, ParamBeginDate, ParamEndDate},
	"byMA":     {ParamMA, ParamParam, ParamBeginDate, ParamEndDate},
}

// Services returns every valid top-level service name, sorted.
func Services() []string {
	names := make([]string, 0, len(serviceRegistry))
	for name := range serviceRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filters returns the valid filter names for a service.
func Filters(service string) ([]string, error) {
	spec, ok := serviceRegistry[service]
	if !ok {
		return nil, &UnknownServiceError{Service: service, Valid: Services()}
	}
	out := make([]string, len(spec.filters))
	copy(out, spec.filters)
	return out, nil
}

// ParamsFor returns the required and optional parameter names for a
// (service, filter) pair.
func ParamsFor(service, filter string) (ParamSpec, error) {
	spec, ok := serviceRegistry[service]
	if !ok {
		return ParamSpec{}, &UnknownServiceError{Service: service, Valid: Services()}
	}
	found := false
	for _, f := range spec.filters {
		if f == filter {
			found = true
			break
		}
	}
	if !found {
		valid := make([]string, len(spec.filters))
		copy(valid, spec.filters)
		return ParamSpec{}, &UnknownFilterError{Service: service, Filter: filter, Valid: valid}
	}

	required := filterRequired[filter]
	ps := ParamSpec{
		Required: make([]string, len(required)),
		Optional: make([]string, len(spec.optional)),
	}
	copy(ps.Required, required)
	copy(ps.Optional, spec.optional)
	return ps, nil
}
