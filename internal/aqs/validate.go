package aqs

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// codedParams lists the coded parameter kinds in resolution order. State
// must resolve before county and county before site, because each later
// resolution is scoped by the earlier codes.
var codedParams = []string{ParamState, ParamCounty, ParamSite, ParamParam, ParamCBSA, ParamPQAO, ParamMA, ParamClass}

var dateParams = []string{ParamBeginDate, ParamEndDate, ParamCBDate, ParamCEDate}

var geoParams = []string{ParamMinLat, ParamMaxLat, ParamMinLon, ParamMaxLon}

// North-America envelope for the soft bounding-box check.
const (
	envelopeMinLat = 20.0
	envelopeMaxLat = 75.0
	envelopeMaxLon = -60.0
)

// Validator decides whether a fully-specified request is well-formed before
// it is sent, saving a round-trip on requests the server would reject.
type Validator struct {
	resolver *Resolver
	logger   zerolog.Logger
	now      func() time.Time
}

// NewValidator creates a validator that resolves coded parameters through
// the given resolver.
func NewValidator(resolver *Resolver, logger zerolog.Logger) *Validator {
	return &Validator{resolver: resolver, logger: logger, now: time.Now}
}

// Validate checks a request against the service registry, resolves coded
// values to canonical codes, validates dates and bounding-box coordinates,
// and trims parameters the target filter does not accept.
//
// Every parameter check runs before the verdict so the returned error names
// all offenders at once. On success the returned params carry resolved codes
// in place of human labels, and each dropped key is reported as an advisory.
func (v *Validator) Validate(ctx context.Context, service, filter string, params Params) (Params, []Advisory, error) {
	spec, err := ParamsFor(service, filter)
	if err != nil {
		return nil, nil, err
	}

	verr := &ValidationError{Service: service, Filter: filter}
	for _, name := range spec.Required {
		if _, ok := params[name]; !ok {
			verr.Missing = append(verr.Missing, name)
		}
	}

	var advisories []Advisory
	resolved := make(map[string]string)

	for _, key := range codedParams {
		value, ok := params[key]
		if !ok {
			continue
		}
		code, rerr := v.resolveValue(ctx, key, value, params, resolved)
		if rerr != nil {
			verr.Fields = append(verr.Fields, FieldError{Param: key, Value: value, Reason: rerr.Error(), Err: rerr})
			continue
		}
		resolved[key] = code
	}

	for _, key := range dateParams {
		value, ok := params[key]
		if !ok {
			continue
		}
		adv, derr := CheckDate(value, v.now())
		if derr != nil {
			verr.Fields = append(verr.Fields, FieldError{Param: key, Value: value, Reason: derr.Error(), Err: derr})
			continue
		}
		if adv != nil {
			adv.Param = key
			advisories = append(advisories, *adv)
		}
	}

	for _, key := range geoParams {
		value, ok := params[key]
		if !ok {
			continue
		}
		adv, gerr := checkGeo(key, value)
		if gerr != nil {
			verr.Fields = append(verr.Fields, FieldError{Param: key, Value: value, Reason: gerr.Error(), Err: gerr})
			continue
		}
		if adv != nil {
			advisories = append(advisories, *adv)
		}
	}

	if len(verr.Missing) > 0 || len(verr.Fields) > 0 {
		return nil, advisories, verr
	}

	// Trim to what the filter accepts, substituting resolved codes.
	accepted := make(map[string]bool, len(spec.Required)+len(spec.Optional))
	for _, name := range spec.Required {
		accepted[name] = true
	}
	for _, name := range spec.Optional {
		accepted[name] = true
	}

	trimmed := make(Params, len(params))
	for key, value := range params {
		if !accepted[key] {
			advisories = append(advisories, Advisory{
				Param:   key,
				Value:   value,
				Message: "not accepted by " + service + "/" + filter + "; dropped",
			})
			v.logger.Warn().Str("param", key).Str("service", service).Str("filter", filter).
				Msg("dropping parameter unused by filter")
			continue
		}
		if code, ok := resolved[key]; ok {
			trimmed[key] = code
		} else {
			trimmed[key] = value
		}
	}
	return trimmed, advisories, nil
}

// resolveValue resolves one coded parameter. The param key may carry up to
// five comma-joined codes (from parameter-class expansion); each member is
// resolved independently.
func (v *Validator) resolveValue(ctx context.Context, key, value string, params Params, resolved map[string]string) (string, error) {
	if key != ParamParam || !strings.Contains(value, ",") {
		return v.resolver.Resolve(ctx, key, value, v.scopeFor(key, params, resolved))
	}

	members := strings.Split(value, ",")
	codes := make([]string, 0, len(members))
	for _, member := range members {
		code, err := v.resolver.Resolve(ctx, key, strings.TrimSpace(member), nil)
		if err != nil {
			return "", err
		}
		codes = append(codes, code)
	}
	return strings.Join(codes, ","), nil
}

// scopeFor assembles the dependent values a coded resolution needs,
// preferring already-resolved codes over raw user input.
func (v *Validator) scopeFor(key string, params Params, resolved map[string]string) map[string]string {
	var keys []string
	switch key {
	case ParamCounty:
		keys = []string{ParamState}
	case ParamSite:
		keys = []string{ParamState, ParamCounty}
	default:
		return nil
	}
	scope := make(map[string]string, len(keys))
	for _, k := range keys {
		if code, ok := resolved[k]; ok {
			scope[k] = code
		} else if raw, ok := params[k]; ok {
			scope[k] = raw
		}
	}
	return scope
}

// checkGeo validates one bounding-box coordinate. Magnitudes beyond the
// valid globe are hard failures; values outside the North-America envelope
// are accepted with an advisory.
func checkGeo(key, raw string) (*Advisory, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", raw)
	}

	limit := 90.0
	isLat := key == ParamMinLat || key == ParamMaxLat
	if !isLat {
		limit = 180.0
	}
	if math.Abs(value) > limit {
		return nil, fmt.Errorf("%w: |%s| exceeds %g", ErrGeoOutOfBounds, raw, limit)
	}

	outside := false
	if isLat {
		outside = value < envelopeMinLat || value > envelopeMaxLat
	} else {
		outside = value > envelopeMaxLon
	}
	if outside {
		return &Advisory{
			Param:   key,
			Value:   raw,
			Message: "outside North America bounding box (lat 20..75, lon -180..-60)",
		}, nil
	}
	return nil, nil
}
