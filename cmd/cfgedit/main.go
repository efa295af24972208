// Command cfgedit updates the configuration files of the code assistant,
// the terminal agent and the editor without disturbing what it does not own.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand(&app{}).Execute(); err != nil {
		os.Exit(1)
	}
}
