// Package content defines the content item that flows through the
// distribution pipeline together with its status lifecycle.
//
// An Item is immutable once stored: every stage transition produces a new
// version carrying the next status. Status ranks order the lifecycle so the
// store can refuse appends that would move an item backwards. Variants and
// Outcomes describe the per-language captions published to platforms and the
// result of each publish attempt.
//
// This package has no dependencies on the store or on any stage; every other
// package in the pipeline builds on it.
package content
