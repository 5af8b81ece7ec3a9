package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

// FlagRule validates one registered flag's value.
type FlagRule func(spec *FlagSpec) error

// FlagSpec bundles a flag name, its backing pointer, and the rules to
// enforce on it.
type FlagSpec struct {
	Name  string
	Value any
	Rules []FlagRule
}

// ValidateConfigOrExit validates the provided specs and prints usage on
// failure, exiting the process - the same fail-fast shape the teacher uses
// for its own RPC/network flag validation.
func ValidateConfigOrExit(fs *flag.FlagSet, specs []FlagSpec) {
	if err := runFlagValidations(specs); err != nil {
		if fs == nil {
			fs = flag.CommandLine
		}
		fmt.Fprintf(os.Stderr, "configuration error: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fs.PrintDefaults()
		os.Exit(2)
	}
}

// InRange asserts that an int flag falls within [lo, hi] inclusive.
func InRange(lo, hi int) FlagRule {
	return func(spec *FlagSpec) error {
		v, ok := spec.Value.(*int)
		if !ok {
			return fmt.Errorf("flag -%s must be an int", spec.Name)
		}
		if *v < lo || *v > hi {
			return fmt.Errorf("flag -%s must be between %d and %d", spec.Name, lo, hi)
		}
		return nil
	}
}

func runFlagValidations(specs []FlagSpec) error {
	for _, spec := range specs {
		if spec.Name == "" {
			return errors.New("flag spec missing name")
		}
		if spec.Value == nil {
			return fmt.Errorf("flag -%s is missing its backing pointer", spec.Name)
		}
		for _, rule := range spec.Rules {
			if rule == nil {
				continue
			}
			if err := rule(&spec); err != nil {
				return err
			}
		}
	}
	return nil
}

