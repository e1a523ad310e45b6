package main

import (
	"fflogs_phase_ranker/cmd"
)

func main() {
	cmd.Execute()
}
