// Package main - hilljump CLI
//
// Usage:
//
//	go run ./cmd/hilljump server start
//	go run ./cmd/hilljump compute
package main

import (
	"os"

	"github.com/caseylessard/hilljump-sub001/cmd/hilljump/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
