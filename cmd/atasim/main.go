// Command atasim is a small interactive runner for the seven named
// scenarios this program answers to, used to eyeball account state before
// and after each one without reaching for a live validator. It is not a
// replacement for the processor package's own tests, which are what this
// program is actually verified against.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	scenario := flag.Int("scenario", 0, "scenario number to run (1-7); 0 runs all of them headless")
	noTUI := flag.Bool("no-tui", false, "print the scenario table to stdout instead of launching the interactive stepper")
	flag.Parse()

	ValidateConfigOrExit(flag.CommandLine, []FlagSpec{
		{Name: "scenario", Value: scenario, Rules: []FlagRule{InRange(0, len(Scenarios))}},
	})

	if *noTUI || *scenario == 0 {
		runHeadless(*scenario)
		return
	}

	ui := newTermUI()
	if err := ui.Run(*scenario); err != nil {
		fmt.Fprintf(os.Stderr, "atasim: %v\n", err)
		os.Exit(1)
	}
}

func runHeadless(n int) {
	if n == 0 {
		fmt.Print(scenarioMenu())
		failures := 0
		for _, s := range Scenarios {
			res := s.Run()
			fmt.Print(renderScenario(res))
			if res.Err != nil {
				failures++
			}
		}
		if failures > 0 {
			fmt.Fprintf(os.Stderr, "atasim: %d of %d scenarios reported an error\n", failures, len(Scenarios))
			os.Exit(1)
		}
		return
	}
	s, ok := ScenariosByNumber(n)
	if !ok {
		fmt.Fprintf(os.Stderr, "atasim: no such scenario: %d\n", n)
		os.Exit(2)
	}
	res := s.Run()
	fmt.Print(renderScenario(res))
	if res.Err != nil {
		os.Exit(1)
	}
}
