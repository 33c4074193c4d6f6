// Package translation is the boundary to external translation providers.
// Every provider turns an ordered batch of source strings into an ordered
// batch of translations of the same length, and reports any transport,
// rate-limit or response-format failure as a *ServiceError. Nothing in
// this package retries.
package translation
