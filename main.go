// Package main is the entry point for the matchstats CLI, which records
// padel and badminton results and reports player statistics.
package main

import "github.com/pable/go-match-stats/cmd"

func main() {
	cmd.Execute()
}
