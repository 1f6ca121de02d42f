package main

import (
	_ "time/tzdata"

	"github.com/citybureau/zba-events/internal/cli"
)

func main() {
	cli.Execute()
}
