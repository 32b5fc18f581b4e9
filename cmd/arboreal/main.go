// Command arboreal is a small host application over the hierarchy
// engine: create nodes, move subtrees, print the tree and run path
// rebuilds against a JSON, SQLite or badger backed store.
// Build with: go build -o bin/arboreal ./cmd/arboreal
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
