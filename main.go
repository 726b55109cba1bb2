// Package main is the entry point for the redgrab application.
package main

import (
	"github.com/redgrab-cli/redgrab/cmd"
	"github.com/redgrab-cli/redgrab/config"
	"github.com/redgrab-cli/redgrab/internal/cache"
	"github.com/redgrab-cli/redgrab/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Prune expired cache entries without delaying startup.
	go cache.CollectGarbage()

	cmd.Execute()
}
