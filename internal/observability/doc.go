// Package observability provides structured logging and Prometheus metrics
// for the paper search service.
//
// Logging is built on zerolog and configured once at startup; helpers attach
// common field sets (search context, paper context) so log lines stay
// consistent across packages. Metrics cover the search pipeline end to end:
// searches by source and sort method, result counts, enrichment outcomes, and
// outbound request failures.
package observability
