// Package normalize canonicalizes raw submission fields into comparable
// forms. Every function here is a pure function of its input: no field
// depends on another record or on record order, and none of them return
// errors. Values that cannot be normalized are passed through cleaned or
// reported as undefined.
package normalize
