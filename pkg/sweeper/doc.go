// Package sweeper implements the retention sweep loop.
//
// The sweeper wakes on a fixed interval and, each cycle, acquires an
// application token, lists new-hire records from the user store, selects
// the ones whose installation age exceeds the retention threshold, and
// revokes the app from each selected user before deleting their records
// in one batch. Records are only deleted after their revocation
// succeeds, so a failed revocation is retried on a later cycle.
//
// Every error is contained at cycle level: a failed cycle is logged,
// counted, and followed by the next cycle on schedule. The retention
// threshold is read from a RetentionPolicy at the start of each cycle,
// so configuration changes apply on the next wakeup without a restart.
package sweeper
