// Command backoffice is the operator CLI: CSV imports and exports, agent
// provisioning, vendor rating recalculation and service tokens.
package main

func main() {
	Execute()
}
