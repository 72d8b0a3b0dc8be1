// Package trigindex implements the event-trigger index (spec §4.1): a
// two-level hash from event id to the triggers currently waiting on it.
// Sixteen buckets, selected by event_id mod 16; each bucket holds a
// densely packed, contiguous event-id slice (laid out so a future SIMD
// refinement can vectorise the equality scan) plus a parallel slice of
// refs into a shared arena.Table of trigger payloads. Removal is O(1):
// swap with the bucket tail and fix up the swapped element's reverse
// link, exactly as spec §4.1 describes.
package trigindex
