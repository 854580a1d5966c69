// Command varq walks the variational-quantum-computing workflow on the
// built-in simulator: inspect the Bell-circuit state vector, sample it,
// compute expectation values, train the two-wire variational classifier
// on the hand-written dataset, and serve results over HTTP.
package main

import (
	"fmt"
	"os"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: varq <command> [flags]

Commands:
  state    print the state vector of the demonstration circuit
  probs    print basis-state probabilities
  sample   draw shot samples from the circuit
  expval   compute a Pauli expectation value
  train    run gradient descent on the hand-written dataset
  serve    serve circuit output and run history over HTTP

Run 'varq <command> -h' for command flags.
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "state":
		err = runState(os.Args[2:])
	case "probs":
		err = runProbs(os.Args[2:])
	case "sample":
		err = runSample(os.Args[2:])
	case "expval":
		err = runExpVal(os.Args[2:])
	case "train":
		err = runTrain(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "varq %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}
