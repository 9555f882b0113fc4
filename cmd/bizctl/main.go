// Command bizctl administers the portal database: schema migrations, fixture
// seeding, data fixups and demo data generation.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
