// Package billing contains the waste-collection billing domain: per-collector
// billing items, their monthly summaries, commission rules, and the tenant
// invoice composed from approved summaries.
//
// Money is represented with decimal.Decimal in JPY; consumption tax is
// truncated toward zero to the nearest yen.
package billing
