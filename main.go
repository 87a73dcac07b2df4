package main

import (
	"log"

	"trading-agent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("trading agent failed: %v", err)
	}
}
