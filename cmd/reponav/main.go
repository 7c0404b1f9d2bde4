// Command reponav browses a remote clinical document repository: listing the
// hierarchy, reading and transferring content, managing folders, and driving
// file versioning actions.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
