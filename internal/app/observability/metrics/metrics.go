package metrics

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal      metric.Int64Counter
	HTTPRequestDuration    metric.Float64Histogram
	DBQueryDurationSeconds metric.Float64Histogram
	DBQueryErrorsTotal     metric.Int64Counter
	LocationsResolvedTotal metric.Int64Counter
	MapRendersTotal        metric.Int64Counter
	ExportsTotal           metric.Int64Counter
	ExportPages            metric.Int64Histogram
	WeatherRequestsTotal   metric.Int64Counter
	WeatherFailuresTotal   metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once, from the global MeterProvider.
// Call it after the provider is installed so the instruments are exported.
func InitAppMetrics() {
	once.Do(func() {
		appMetrics = newAppMetrics(otel.GetMeterProvider().Meter("loci-itinerary-maps"))
	})
}

// Get returns the instruments, initializing them against the current global
// provider when InitAppMetrics was never called (tests, tools).
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

func newAppMetrics(meter metric.Meter) *AppMetrics {
	m := &AppMetrics{}
	// Instrument constructors only fail on invalid names; they still return a
	// usable no-op instrument in that case.
	m.HTTPRequestsTotal, _ = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests completed"),
		metric.WithUnit("{request}"),
	)
	m.HTTPRequestDuration, _ = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	m.DBQueryDurationSeconds, _ = meter.Float64Histogram(
		"db_query_duration_seconds",
		metric.WithDescription("Duration of database queries in seconds"),
		metric.WithUnit("s"),
	)
	m.DBQueryErrorsTotal, _ = meter.Int64Counter(
		"db_query_errors_total",
		metric.WithDescription("Total number of database query errors"),
		metric.WithUnit("{error}"),
	)
	m.LocationsResolvedTotal, _ = meter.Int64Counter(
		"locations_resolved_total",
		metric.WithDescription("Free-text locations resolved, by match kind"),
		metric.WithUnit("{location}"),
	)
	m.MapRendersTotal, _ = meter.Int64Counter(
		"map_renders_total",
		metric.WithDescription("Map render passes, by outcome"),
		metric.WithUnit("{render}"),
	)
	m.ExportsTotal, _ = meter.Int64Counter(
		"itinerary_exports_total",
		metric.WithDescription("Itinerary PDF exports, by outcome"),
		metric.WithUnit("{export}"),
	)
	m.ExportPages, _ = meter.Int64Histogram(
		"itinerary_export_pages",
		metric.WithDescription("Pages per exported itinerary document"),
		metric.WithUnit("{page}"),
	)
	m.WeatherRequestsTotal, _ = meter.Int64Counter(
		"weather_requests_total",
		metric.WithDescription("Weather lookups, by source"),
		metric.WithUnit("{request}"),
	)
	m.WeatherFailuresTotal, _ = meter.Int64Counter(
		"weather_fetch_failures_total",
		metric.WithDescription("Weather provider failures answered with a placeholder"),
		metric.WithUnit("{error}"),
	)
	return m
}

// RecordHTTPRequest counts a completed request and records its latency.
// route is the matched route template, never the raw path.
func RecordHTTPRequest(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	m := Get()
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordResolution counts one resolved location.
func RecordResolution(ctx context.Context, kind models.MatchKind) {
	Get().LocationsResolvedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("match", string(kind))))
}

// RecordMapRender counts a render pass. outcome is "rendered" or an error class.
func RecordMapRender(ctx context.Context, outcome string, markers int) {
	Get().MapRendersTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Bool("empty", markers == 0),
	))
}

// RecordExport counts an export and, when it succeeded, its page count.
func RecordExport(ctx context.Context, outcome string, pages int) {
	m := Get()
	m.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if pages > 0 {
		m.ExportPages.Record(ctx, int64(pages))
	}
}

// RecordWeather counts a weather lookup answered from source.
func RecordWeather(ctx context.Context, source string) {
	Get().WeatherRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// RecordWeatherFailure counts a provider failure.
func RecordWeatherFailure(ctx context.Context, reason string) {
	Get().WeatherFailuresTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
