// Ganymede is a governed state mutation engine with audit and history
// tooling.
//
// The ganymede binary is the operational companion to the library: it
// inspects the audit ledger and mutation history stores that engine
// deployments write to.
//
// Usage:
//
//	# Query the audit ledger for a state
//	ganymede audit query --state-id order-42
//
//	# Show the mutation history of a state
//	ganymede history show --state-id order-42
//
//	# Verify the history hash chain
//	ganymede history verify --state-id order-42
//
//	# Validate a configuration file
//	ganymede config validate --config config.yaml
//
//	# Show version information
//	ganymede version
package main

func main() {
	Execute()
}
