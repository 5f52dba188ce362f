// Package phone detects phone numbers in chat messages.
//
// Detection is a pure function with no I/O. Four strategies run in order:
//
//  1. Direct: the whole input contains 9-10 digits total.
//  2. Leading zero: 11 digits starting with 0 followed by a mobile prefix.
//  3. Country code: 12 digits starting with the dialing prefix.
//  4. Sliding window: every contiguous 10-digit window over the input's
//     digits, keeping original character offsets.
//
// The fixed-length strategies intentionally over-detect (they only count
// digits), which is the desired bias for a privacy guard.
package phone
