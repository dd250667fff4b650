// Package main provides the aqsfetch command line tool: it runs one AQS
// query end to end and writes one CSV per calendar year.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aqsfetch/aqsfetch/internal/aqs"
	"github.com/aqsfetch/aqsfetch/internal/aqs/epa"
	"github.com/aqsfetch/aqsfetch/internal/output"
	"github.com/aqsfetch/aqsfetch/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// queryFlags collects the AQS query parameters exposed as flags.
type queryFlags struct {
	state, county, site string
	param, class        string
	bdate, edate        string
	cbdate, cedate      string
	duration            string
	cbsa, pqao, ma      string
	minlat, maxlat      string
	minlon, maxlon      string
}

// params builds the request parameter map from the flags that were set.
func (q *queryFlags) params() aqs.Params {
	params := aqs.Params{}
	for name, value := range map[string]string{
		aqs.ParamState:     q.state,
		aqs.ParamCounty:    q.county,
		aqs.ParamSite:      q.site,
		aqs.ParamParam:     q.param,
		aqs.ParamClass:     q.class,
		aqs.ParamBeginDate: q.bdate,
		aqs.ParamEndDate:   q.edate,
		aqs.ParamCBDate:    q.cbdate,
		aqs.ParamCEDate:    q.cedate,
		aqs.ParamDuration:  q.duration,
		aqs.ParamCBSA:      q.cbsa,
		aqs.ParamPQAO:      q.pqao,
		aqs.ParamMA:        q.ma,
		aqs.ParamMinLat:    q.minlat,
		aqs.ParamMaxLat:    q.maxlat,
		aqs.ParamMinLon:    q.minlon,
		aqs.ParamMaxLon:    q.maxlon,
	} {
		if value != "" {
			params[name] = value
		}
	}
	return params
}

func newRootCmd() *cobra.Command {
	var (
		service         string
		filter          string
		outDir          string
		concurrency     int
		continueOnError bool
		flags           queryFlags
	)

	cmd := &cobra.Command{
		Use:           "aqsfetch",
		Short:         "Fetch and normalize EPA Air Quality System data",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), service, filter, flags.params(), outDir, concurrency, continueOnError)
		},
	}

	cmd.Flags().StringVar(&service, "service", "sampleData", "AQS service (sampleData, dailyData, annualData, ...)")
	cmd.Flags().StringVar(&filter, "filter", "byState", "AQS filter (byState, byCounty, bySite, byBox, byCBSA, ...)")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory for per-year CSV output")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "concurrent calendar-year sub-requests")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "keep fetching remaining years after a failure")

	cmd.Flags().StringVar(&flags.state, "state", "", "state code or name (e.g. 24 or Maryland)")
	cmd.Flags().StringVar(&flags.county, "county", "", "county code or name")
	cmd.Flags().StringVar(&flags.site, "site", "", "site number")
	cmd.Flags().StringVar(&flags.param, "param", "", "parameter code (e.g. 44201 for ozone)")
	cmd.Flags().StringVar(&flags.class, "pc", "", "parameter class to expand (e.g. CRITERIA)")
	cmd.Flags().StringVar(&flags.bdate, "bdate", "", "begin date (YYYYMMDD)")
	cmd.Flags().StringVar(&flags.edate, "edate", "", "end date (YYYYMMDD)")
	cmd.Flags().StringVar(&flags.cbdate, "cbdate", "", "change begin cutoff date (YYYYMMDD)")
	cmd.Flags().StringVar(&flags.cedate, "cedate", "", "change end cutoff date (YYYYMMDD)")
	cmd.Flags().StringVar(&flags.duration, "duration", "", "sample duration code")
	cmd.Flags().StringVar(&flags.cbsa, "cbsa", "", "core based statistical area code")
	cmd.Flags().StringVar(&flags.pqao, "pqao", "", "primary quality assurance organization code")
	cmd.Flags().StringVar(&flags.ma, "ma", "", "monitoring agency code")
	cmd.Flags().StringVar(&flags.minlat, "minlat", "", "bounding box minimum latitude")
	cmd.Flags().StringVar(&flags.maxlat, "maxlat", "", "bounding box maximum latitude")
	cmd.Flags().StringVar(&flags.minlon, "minlon", "", "bounding box minimum longitude")
	cmd.Flags().StringVar(&flags.maxlon, "maxlon", "", "bounding box maximum longitude")

	cmd.AddCommand(newCodesCmd(), newSignupCmd())
	return cmd
}

// newCodesCmd lists a server-side code table (states, classes, ...).
func newCodesCmd() *cobra.Command {
	var (
		state  string
		county string
		class  string
	)
	cmd := &cobra.Command{
		Use:   "codes <list-filter>",
		Short: "List valid codes (states, countiesByState, classes, parametersByClass, ...)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			log := newLogger()
			svc := newService(log, ".", 1, false)

			scope := map[string]string{}
			if state != "" {
				scope[aqs.ParamState] = state
			}
			if county != "" {
				scope[aqs.ParamCounty] = county
			}
			if class != "" {
				scope[aqs.ParamClass] = class
			}

			table, err := svc.Codes(cmd.Context(), args[0], scope)
			if err != nil {
				log.Error().Err(err).Msg("code list fetch failed")
				return err
			}
			for _, entry := range table {
				fmt.Printf("%-10s %s\n", entry.Code, entry.ValueRepresented)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "state code scope (for countiesByState, sitesByCounty)")
	cmd.Flags().StringVar(&county, "county", "", "county code scope (for sitesByCounty)")
	cmd.Flags().StringVar(&class, "pc", "", "parameter class scope (for parametersByClass)")
	return cmd
}

// newSignupCmd prints the URL that requests an API key for an email address.
func newSignupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup <email>",
		Short: "Print the AQS signup URL that emails an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(aqs.SignupURL(args[0]))
			return nil
		},
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if raw := os.Getenv("AQS_LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Str("service", "aqsfetch").
		Str("version", Version).
		Logger()
}

func newService(log zerolog.Logger, outDir string, concurrency int, continueOnError bool) *aqs.Service {
	creds := aqs.EnvCredentials{}
	client := epa.NewClient(epa.ClientConfig{
		BaseURL:     os.Getenv("AQS_BASE_URL"),
		Credentials: creds,
	})
	return aqs.NewService(aqs.ServiceConfig{
		Fetcher:         client,
		Lists:           client,
		Credentials:     creds,
		Sink:            output.CSVSink{},
		OutputDir:       outDir,
		Logger:          log,
		Concurrency:     concurrency,
		ContinueOnError: continueOnError,
	})
}

func run(ctx context.Context, service, filter string, params aqs.Params, outDir string, concurrency int, continueOnError bool) error {
	// Credentials and endpoint overrides may live in a .env file.
	_ = godotenv.Load()

	log := newLogger()
	log.Info().Str("build_time", BuildTime).Msg("starting aqsfetch")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "aqsfetch",
		ServiceVersion: Version,
		Environment:    os.Getenv("APP_ENV"),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Enabled:        os.Getenv("OTEL_ENABLED") == "true",
	})
	if err != nil {
		log.Error().Err(err).Msg("telemetry init failed")
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	svc := newService(log, outDir, concurrency, continueOnError)

	tables, advisories, err := svc.Execute(ctx, service, filter, params)
	for _, adv := range advisories {
		fmt.Fprintln(os.Stderr, "warning: "+adv.String())
	}
	if err != nil {
		log.Error().Err(err).Int("tables", len(tables)).Msg("query failed")
		return err
	}

	rows := 0
	for _, t := range tables {
		rows += len(t)
	}
	log.Info().Int("tables", len(tables)).Int("rows", rows).Msg("done")
	return nil
}
