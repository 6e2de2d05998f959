// Callisto is a retention sweeper for a workplace chat onboarding
// add-in.
//
// It runs a perpetual background loop that removes the add-in from
// new-hire accounts once their installation age exceeds a configurable
// retention threshold, then deletes the matching records from the user
// store. An operational HTTP server exposes health probes, Prometheus
// metrics, and the audit journal.
//
// Usage:
//
//	# Start the sweeper with the default configuration file
//	callisto run
//
//	# Start with a custom configuration file
//	callisto run --config /etc/callisto/config.yaml
//
//	# Execute a single sweep cycle and exit
//	callisto sweep --dry-run
//
//	# Validate the configuration file
//	callisto validate
//
//	# Show recent journal activity
//	callisto journal --limit 20 --output json
package main

func main() {
	Execute()
}
