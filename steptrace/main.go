// Command steptrace runs the demonstration shower with a stepping tracer
// attached, and replays recorded runs through new tracers.
package main

import "github.com/sarchlab/steptrace/steptrace/cmd"

func main() {
	cmd.Execute()
}
