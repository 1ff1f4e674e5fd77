// Package distribution publishes a content item to one platform per call.
//
// A registry maps each supported platform to an adapter describing its
// framing, caption limit and recipient requirement. Variant attempts run
// concurrently and independently; once every attempt has finished, the
// outcomes are appended to the item in a single new version whose status is
// recomputed over all outcomes recorded so far.
package distribution
