/*
main.go - Application entry point

PURPOSE:
  The carepath command: runs the HTTP server, seeds the database and
  evaluates subsidy tiers from the shell.

COMMANDS:
  serve                     Start the HTTP API
  seed initiatives          Load the standard workplace-initiative catalog
  seed sample [scenario]    Reset the database and load a demo scenario
  evaluate                  Print tier, rate and estimate for given inputs

CONFIGURATION:
  Read from the environment (see config/config.go). The persistent flags
  --port, --db and --log-level override the environment when set.

EXAMPLES:
  # Run with in-memory database
  carepath serve --db=":memory:"

  # Seed the demo nursing home into a file database
  carepath seed sample nursing-home --db=./data/carepath.db

  # Evaluate without a database
  carepath evaluate --flags I,II,III --counts 1,1,1 --units 1000000

SEE ALSO:
  - api/server.go: Router configuration
  - config/:       Environment and logger
*/
package main

func main() {
	Execute()
}
