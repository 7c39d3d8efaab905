// Package search implements the paper search pipeline: engines that query a
// primary bibliographic source and assemble enriched papers, a registry that
// resolves a source name to its engine, and a service that orchestrates the
// whole call with defaults, validation, logging, and metrics.
//
// Every successful search yields two things: the ranked paper list and a
// RankingCriteria record documenting how that ranking was produced.
package search
