package aqs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxParamCodes is the AQS per-request limit on comma-joined parameter
// codes.
const maxParamCodes = 5

// Fetcher issues one data query against the AQS API and returns the decoded
// Data rows.
type Fetcher interface {
	FetchSamples(ctx context.Context, service, filter string, query Params) ([]SampleRow, error)
}

// Sink persists a normalized table to durable storage.
type Sink interface {
	Save(table MeasurementTable, path string) error
}

// ServiceConfig holds configuration for the query service.
type ServiceConfig struct {
	// Fetcher issues data queries. Required.
	Fetcher Fetcher

	// Lists fetches code lists for resolution and class expansion. Required.
	Lists CodeLister

	// Credentials supplies the AQS email/key pair. Required.
	Credentials CredentialsProvider

	// Sink persists per-year tables. Optional; nil disables persistence.
	Sink Sink

	// OutputDir is the directory Sink writes into.
	OutputDir string

	// Logger for query progress and advisories.
	Logger zerolog.Logger

	// Tracer for per-query spans. Defaults to the global tracer.
	Tracer trace.Tracer

	// Concurrency bounds the fan-out across calendar-year sub-requests.
	// Default 1: strictly sequential, stopping at the first failure.
	Concurrency int

	// ContinueOnError keeps issuing sub-requests after one fails. Failed
	// years are reported in the aggregate error; completed years are still
	// returned.
	ContinueOnError bool
}

// Service is the top-level entry point: it resolves credentials, expands
// parameter classes, splits multi-year ranges, validates each sub-request
// and hands the fetched payloads to the normalizer and the sink.
type Service struct {
	fetcher         Fetcher
	resolver        *Resolver
	validator       *Validator
	creds           CredentialsProvider
	sink            Sink
	outputDir       string
	logger          zerolog.Logger
	tracer          trace.Tracer
	concurrency     int
	continueOnError bool
}

// NewService creates a query service.
func NewService(cfg ServiceConfig) *Service {
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("aqsfetch")
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	resolver := NewResolver(cfg.Lists, cfg.Logger)
	return &Service{
		fetcher:         cfg.Fetcher,
		resolver:        resolver,
		validator:       NewValidator(resolver, cfg.Logger),
		creds:           cfg.Credentials,
		sink:            cfg.Sink,
		outputDir:       cfg.OutputDir,
		logger:          cfg.Logger,
		tracer:          tracer,
		concurrency:     concurrency,
		continueOnError: cfg.ContinueOnError,
	}
}

// Codes fetches one code list, for callers exploring valid query values.
func (s *Service) Codes(ctx context.Context, listFilter string, scope map[string]string) (CodeTable, error) {
	return s.resolver.lists.ListCodes(ctx, listFilter, scope)
}

// yearResult carries one sub-request's outcome back to Execute.
type yearResult struct {
	table      MeasurementTable
	advisories []Advisory
	err        error
}

// Execute runs one query end to end and returns one normalized table per
// calendar-year sub-request, in chronological order.
//
// Validation is skipped for the list and metaData services, which have no
// data-shape constraints. With the default sequential configuration a failed
// year stops the remaining years; completed tables are still returned.
func (s *Service) Execute(ctx context.Context, service, filter string, params Params) ([]MeasurementTable, []Advisory, error) {
	queryID := uuid.NewString()
	log := s.logger.With().
		Str("query_id", queryID).
		Str("service", service).
		Str("filter", filter).
		Logger()

	ctx, span := s.tracer.Start(ctx, "aqs.query", trace.WithAttributes(
		attribute.String("aqs.service", service),
		attribute.String("aqs.filter", filter),
		attribute.String("aqs.query_id", queryID),
	))
	defer span.End()

	// Fail fast before any network round-trip.
	if _, err := s.creds.Credentials(ctx); err != nil {
		return nil, nil, err
	}

	params = params.Clone()
	skipValidation := service == "list" || service == "metaData"

	var advisories []Advisory
	if class, ok := params[ParamClass]; ok && !skipValidation {
		adv, err := s.expandClass(ctx, params, class)
		if err != nil {
			return nil, nil, err
		}
		advisories = append(advisories, adv...)
		log.Info().Str("pc", class).Str("param", params[ParamParam]).Msg("expanded parameter class")
	}

	ranges, err := s.subRanges(params)
	if err != nil {
		return nil, advisories, err
	}

	log.Info().Int("years", len(ranges)).Int("concurrency", s.concurrency).Msg("starting query")

	results := make([]yearResult, len(ranges))
	if s.concurrency == 1 {
		for i, dr := range ranges {
			results[i] = s.runYear(ctx, log, service, filter, params, dr, skipValidation)
			if results[i].err != nil && !s.continueOnError {
				break
			}
		}
	} else {
		s.fanOut(ctx, log, service, filter, params, ranges, skipValidation, results)
	}

	var (
		tables []MeasurementTable
		errs   []error
	)
	for i, res := range results {
		advisories = append(advisories, res.advisories...)
		if res.err != nil {
			if ranges[i].Begin == "" {
				errs = append(errs, res.err)
			} else {
				errs = append(errs, fmt.Errorf("year %s: %w", ranges[i].Year(), res.err))
			}
			continue
		}
		if res.table != nil {
			tables = append(tables, res.table)
		}
	}

	for _, adv := range advisories {
		log.Warn().Str("param", adv.Param).Str("value", adv.Value).Msg(adv.Message)
	}
	if len(errs) > 0 {
		return tables, advisories, errors.Join(errs...)
	}

	log.Info().Int("tables", len(tables)).Msg("query complete")
	return tables, advisories, nil
}

// expandClass substitutes a parameter-class shorthand with its member codes,
// comma-joined up to the AQS per-request limit.
func (s *Service) expandClass(ctx context.Context, params Params, class string) ([]Advisory, error) {
	codes, err := s.resolver.MemberCodes(ctx, class)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("parameter class %q has no member parameters", class)
	}

	var advisories []Advisory
	if len(codes) > maxParamCodes {
		advisories = append(advisories, Advisory{
			Param: ParamClass,
			Value: class,
			Message: fmt.Sprintf("class has %d parameters; only the first %d fit one request",
				len(codes), maxParamCodes),
		})
		codes = codes[:maxParamCodes]
	}
	params[ParamParam] = strings.Join(codes, ",")
	delete(params, ParamClass)
	return advisories, nil
}

// subRanges splits the requested span into per-year ranges. Requests without
// a date range (list, metaData, monitors without cutoffs) run as a single
// sub-request.
func (s *Service) subRanges(params Params) ([]DateRange, error) {
	bdate, hasBegin := params[ParamBeginDate]
	edate, hasEnd := params[ParamEndDate]
	if !hasBegin || !hasEnd {
		return []DateRange{{}}, nil
	}
	return SplitYears(bdate, edate)
}

// fanOut runs the sub-requests through a bounded worker pool. Each year
// fails independently; results keep chronological order via their index.
func (s *Service) fanOut(ctx context.Context, log zerolog.Logger, service, filter string, params Params, ranges []DateRange, skipValidation bool, results []yearResult) {
	type job struct {
		index int
		dr    DateRange
	}
	jobs := make(chan job, len(ranges))

	var wg sync.WaitGroup
	for w := 0; w < s.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = s.runYear(ctx, log, service, filter, params, j.dr, skipValidation)
			}
		}()
	}
	for i, dr := range ranges {
		jobs <- job{index: i, dr: dr}
	}
	close(jobs)
	wg.Wait()
}

// runYear validates, fetches, normalizes and persists one sub-request.
func (s *Service) runYear(ctx context.Context, log zerolog.Logger, service, filter string, params Params, dr DateRange, skipValidation bool) yearResult {
	ctx, span := s.tracer.Start(ctx, "aqs.year_request", trace.WithAttributes(
		attribute.String("aqs.bdate", dr.Begin),
		attribute.String("aqs.edate", dr.End),
	))
	defer span.End()

	query := params.Clone()
	if dr.Begin != "" {
		query[ParamBeginDate] = dr.Begin
		query[ParamEndDate] = dr.End
	}

	var advisories []Advisory
	if !skipValidation {
		trimmed, advs, err := s.validator.Validate(ctx, service, filter, query)
		if err != nil {
			return yearResult{advisories: advs, err: err}
		}
		query = trimmed
		advisories = advs
	}

	rows, err := s.fetcher.FetchSamples(ctx, service, filter, query)
	if err != nil {
		return yearResult{advisories: advisories, err: err}
	}

	table, err := Normalize(rows)
	if err != nil {
		return yearResult{advisories: advisories, err: fmt.Errorf("normalize payload: %w", err)}
	}

	log.Info().
		Str("bdate", dr.Begin).
		Str("edate", dr.End).
		Int("rows_in", len(rows)).
		Int("rows_out", len(table)).
		Msg("year sub-request complete")

	if s.sink != nil && dr.Begin != "" {
		path := filepath.Join(s.outputDir, outputName(dr, query))
		if err := s.sink.Save(table, path); err != nil {
			return yearResult{advisories: advisories, err: fmt.Errorf("persist table: %w", err)}
		}
		log.Info().Str("path", path).Msg("table persisted")
	}

	return yearResult{table: table, advisories: advisories}
}

// outputName builds the per-year file name: {year}{param}_{state}.csv.
func outputName(dr DateRange, query Params) string {
	return fmt.Sprintf("%s%s_%s.csv",
		dr.Year(),
		ParameterLabel(query[ParamParam]),
		StateLabel(query[ParamState]))
}
