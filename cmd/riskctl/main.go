// Command riskctl runs one-off risk queries from the terminal, either live
// against NASA POWER or offline from a single-site CSV file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
