// namescan finds person names in text corpora: exact and fuzzy multi-keyword
// matching over streaming CSV files, plus the preprocessing that builds the
// search-name lists it consumes.
package main

import (
	"fmt"
	"os"

	"github.com/corey/namescan/cmd/namescan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
