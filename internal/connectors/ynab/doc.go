// Package ynab provides the upstream client for the YNAB REST API.
//
// The Client attaches the session's bearer token to each request, enforces a
// local fixed-window request budget (200 calls per hour by default), bounds
// every attempt with a timeout and retries transient failures with exponential
// backoff. Failures are classified into domain errors so callers can branch on
// the kind without parsing messages.
//
// Resource methods implement driven.BudgetAPI. Every method performs exactly
// one upstream request, retries aside; nothing is cached.
package ynab
