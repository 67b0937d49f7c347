// Package finance holds the pure aggregation functions of the tracker:
// category and month summaries, month filtering, budget and spending-limit
// evaluation, the financial health score, goal progress and the derived
// reports built on them.
//
// Every function is synchronous and total over its input snapshot. Callers
// pass the current time explicitly so results are reproducible.
package finance
