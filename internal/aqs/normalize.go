package aqs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// timestampLayout matches the date_local/time_local pair AQS returns
// ("2024-01-15" + "13:00").
const timestampLayout = "2006-01-02 15:04"

// Normalize cleans a raw payload into a MeasurementTable: it merges the
// per-row date and time fields into one timestamp, derives a composite site
// identifier, rescales ppm measurements to ppb, drops rows without a numeric
// measurement or a validated qualifier, and sorts ascending by timestamp.
// Normalizing an already-clean table is idempotent.
func Normalize(rows []SampleRow) (MeasurementTable, error) {
	table := make(MeasurementTable, 0, len(rows))
	for i, row := range rows {
		if row.SampleMeasurement == nil {
			continue
		}
		if !qualifierAccepted(row.Qualifier) {
			continue
		}

		ts, err := time.Parse(timestampLayout, row.DateLocal+" "+row.TimeLocal)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse timestamp %q %q: %w", i, row.DateLocal, row.TimeLocal, err)
		}

		value := *row.SampleMeasurement
		if isPPM(row.UnitsOfMeasureCode) {
			value *= 1000 // ppm reported; normalize to ppb
		}

		table = append(table, Measurement{
			Timestamp:          ts,
			SiteID:             siteID(row.StateCode, row.CountyCode, row.SiteNumber),
			ParameterCode:      string(row.ParameterCode),
			Value:              value,
			MethodCode:         string(row.MethodCode),
			SampleDurationCode: string(row.SampleDurationCode),
		})
	}

	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Timestamp.Before(table[j].Timestamp)
	})
	return table, nil
}

// qualifierAccepted keeps rows whose qualifier is absent or carries the AQS
// validated flag (codes beginning with "V").
func qualifierAccepted(q string) bool {
	q = strings.TrimSpace(q)
	return q == "" || strings.HasPrefix(q, "V")
}

// isPPM reports whether the unit code marks parts-per-million, which the API
// serves as "007" on some rows and the number 7 on others.
func isPPM(code FlexString) bool {
	return code == "007" || code == "7"
}

// siteID builds the composite station identifier from the zero-padded state
// (2), county (3) and site (4) codes.
func siteID(state, county, site FlexString) string {
	s, err1 := strconv.Atoi(string(state))
	c, err2 := strconv.Atoi(string(county))
	n, err3 := strconv.Atoi(string(site))
	if err1 != nil || err2 != nil || err3 != nil {
		// Non-numeric codes pass through unpadded.
		return string(state) + string(county) + string(site)
	}
	return fmt.Sprintf("%02d%03d%04d", s, c, n)
}
