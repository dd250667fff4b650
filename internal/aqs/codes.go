package aqs

// Static label catalogs used for output file naming. Unknown codes fall back
// to the raw code so file names stay deterministic without a network call.

// parameterLabels maps the criteria-pollutant AQS parameter codes to short
// labels.
var parameterLabels = map[string]string{
	"42101": "CO",
	"42401": "SO2",
	"42602": "NO2",
	"44201": "O3",
	"81102": "PM10",
	"88101": "PM25",
	"88502": "PM25n",
}

// stateLabels maps state FIPS codes to postal abbreviations.
var stateLabels = map[string]string{
	"01": "AL", "02": "AK", "04": "AZ", "05": "AR", "06": "CA",
	"08": "CO", "09": "CT", "10": "DE", "11": "DC", "12": "FL",
	"13": "GA", "15": "HI", "16": "ID", "17": "IL", "18": "IN",
	"19": "IA", "20": "KS", "21": "KY", "22": "LA", "23": "ME",
	"24": "MD", "25": "MA", "26": "MI", "27": "MN", "28": "MS",
	"29": "MO", "30": "MT", "31": "NE", "32": "NV", "33": "NH",
	"34": "NJ", "35": "NM", "36": "NY", "37": "NC", "38": "ND",
	"39": "OH", "40": "OK", "41": "OR", "42": "PA", "44": "RI",
	"45": "SC", "46": "SD", "47": "TN", "48": "TX", "49": "UT",
	"50": "VT", "51": "VA", "53": "WA", "54": "WV", "55": "WI",
	"56": "WY", "66": "GU", "72": "PR", "78": "VI", "80": "MX",
	"CC": "CA2",
}

// ParameterLabel returns the short label for a parameter code. For a comma-
// joined multi-parameter value the first code's label is used.
func ParameterLabel(code string) string {
	for i := 0; i < len(code); i++ {
		if code[i] == ',' {
			code = code[:i]
			break
		}
	}
	if label, ok := parameterLabels[code]; ok {
		return label
	}
	return code
}

// StateLabel returns the postal abbreviation for a state FIPS code.
func StateLabel(code string) string {
	if label, ok := stateLabels[code]; ok {
		return label
	}
	return code
}
