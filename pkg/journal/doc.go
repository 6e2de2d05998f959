// Package journal records an append-only audit trail of sweep activity.
//
// Every revocation attempt is written as an Action row keyed by the cycle
// that produced it. The journal is advisory: writes that fail are logged
// by the caller and never abort a sweep. A cron-scheduled Maintainer
// prunes rows past the journal's own retention window.
package journal
