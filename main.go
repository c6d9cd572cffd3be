// Package main is the entry point for the covmerge CLI.
package main

import "covmerge.dev/pkg/covmerge/cmd"

func main() {
	cmd.Execute()
}
