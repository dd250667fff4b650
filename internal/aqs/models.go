// Package aqs provides a client for the US EPA Air Quality System data API.
package aqs

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Well-known AQS query parameter names.
const (
	ParamState     = "state"
	ParamCounty    = "county"
	ParamSite      = "site"
	ParamParam     = "param"
	ParamClass     = "pc"
	ParamCBSA      = "cbsa"
	ParamPQAO      = "pqao"
	ParamMA        = "ma"
	ParamBeginDate = "bdate"
	ParamEndDate   = "edate"
	ParamCBDate    = "cbdate"
	ParamCEDate    = "cedate"
	ParamDuration  = "duration"
	ParamMinLat    = "minlat"
	ParamMaxLat    = "maxlat"
	ParamMinLon    = "minlon"
	ParamMaxLon    = "maxlon"
)

// Params is one caller-constructed query, keyed by AQS parameter name.
// Values are strings as they appear on the wire; bounding-box values are
// parsed to floats during validation.
type Params map[string]string

// Clone returns a copy that can be mutated without affecting the original.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// CodeEntry is one row of a server-provided code list.
type CodeEntry struct {
	Code             string `json:"code"`
	ValueRepresented string `json:"value_represented"`
}

// CodeTable is a server-provided enumeration of valid values for a coded
// parameter kind. It lives only for the duration of one resolution call.
type CodeTable []CodeEntry

// Find returns the entry whose code or represented value equals v exactly.
func (t CodeTable) Find(v string) (CodeEntry, bool) {
	for _, e := range t {
		if e.Code == v || e.ValueRepresented == v {
			return e, true
		}
	}
	return CodeEntry{}, false
}

// Codes returns all codes in the table, in table order.
func (t CodeTable) Codes() []string {
	codes := make([]string, 0, len(t))
	for _, e := range t {
		codes = append(codes, e.Code)
	}
	return codes
}

// FlexString decodes JSON values that the AQS API serves inconsistently as
// either a string or a number (e.g. units_of_measure_code is "007" on some
// rows and 7 on others).
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// SampleRow is one raw observation row as returned by the AQS data services.
type SampleRow struct {
	DateLocal          string     `json:"date_local"`
	TimeLocal          string     `json:"time_local"`
	StateCode          FlexString `json:"state_code"`
	CountyCode         FlexString `json:"county_code"`
	SiteNumber         FlexString `json:"site_number"`
	POC                FlexString `json:"poc"`
	ParameterCode      FlexString `json:"parameter_code"`
	SampleMeasurement  *float64   `json:"sample_measurement"`
	UnitsOfMeasureCode FlexString `json:"units_of_measure_code"`
	MethodCode         FlexString `json:"method_code"`
	SampleDurationCode FlexString `json:"sample_duration_code"`
	Qualifier          string     `json:"qualifier"`
}

// Measurement is one cleaned observation.
type Measurement struct {
	Timestamp          time.Time
	SiteID             string
	ParameterCode      string
	Value              float64
	MethodCode         string
	SampleDurationCode string
}

// MeasurementTable is a normalized, timestamp-sorted set of measurements for
// one calendar-year sub-request.
type MeasurementTable []Measurement

// Credentials is the email/key pair every AQS request must carry.
type Credentials struct {
	Email string
	Key   string
}

// Advisory is a non-blocking warning surfaced alongside an otherwise
// successful validation.
type Advisory struct {
	Param   string
	Value   string
	Message string
}

func (a Advisory) String() string {
	if a.Param == "" {
		return a.Message
	}
	return fmt.Sprintf("%s=%s: %s", a.Param, a.Value, a.Message)
}

// DateRange is an inclusive begin/end pair of YYYYMMDD dates.
type DateRange struct {
	Begin string
	End   string
}

// Year returns the calendar year of the range's begin date.
func (r DateRange) Year() string {
	if len(r.Begin) < 4 {
		return r.Begin
	}
	return r.Begin[:4]
}

// joinScope renders a resolution scope for error messages.
func joinScope(scope map[string]string) string {
	if len(scope) == 0 {
		return ""
	}
	parts := make([]string, 0, len(scope))
	for k, v := range scope {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}
