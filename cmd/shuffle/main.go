// Command shuffle is a CLI collaborator around the shuffle/persistent
// wrapper: it draws items from a badger-backed store, inspects its
// contents, and can repair records that fail to decode.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
