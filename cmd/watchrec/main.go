// The main package for the watchrec executable.
package main

import (
	"github.com/JakeFAU/watchrec/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
