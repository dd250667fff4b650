package aqs

import "fmt"

// SplitYears decomposes an inclusive [bdate, edate] span into per-calendar-
// year sub-ranges, honoring the AQS API's single-calendar-year-per-request
// limit. The first range begins at bdate, the last ends at edate, and every
// interior range runs Jan 1 through Dec 31.
func SplitYears(bdate, edate string) ([]DateRange, error) {
	beginYear, _, _, err := parseDate(bdate)
	if err != nil {
		return nil, &RangeError{Begin: bdate, End: edate, Reason: err.Error()}
	}
	endYear, _, _, err := parseDate(edate)
	if err != nil {
		return nil, &RangeError{Begin: bdate, End: edate, Reason: err.Error()}
	}
	if endYear < beginYear {
		return nil, &RangeError{Begin: bdate, End: edate, Reason: "end year precedes begin year"}
	}

	ranges := make([]DateRange, 0, endYear-beginYear+1)
	for year := beginYear; year <= endYear; year++ {
		ranges = append(ranges, DateRange{
			Begin: fmt.Sprintf("%04d0101", year),
			End:   fmt.Sprintf("%04d1231", year),
		})
	}
	ranges[0].Begin = bdate
	ranges[len(ranges)-1].End = edate
	return ranges, nil
}
