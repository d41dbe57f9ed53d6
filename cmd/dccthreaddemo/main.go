// Binary dccthreaddemo exercises the dccthread scheduler end to end,
// one subcommand per scenario in spec.md §8. Each scenario calls
// dccthread.Init itself; a FatalError returned from Init becomes a
// failing exit status that main passes to os.Exit, so the library never
// exits the process itself, matching the library/host split documented
// in dccthread's package doc.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/subcommands"

	dccthread "github.com/JunioVeras/TP1-SO"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(new(pingPongCmd), "")
	subcommands.Register(new(joinFinishedCmd), "")
	subcommands.Register(new(preemptionCmd), "")
	subcommands.Register(new(fairnessCmd), "")
	subcommands.Register(new(chainedWaitCmd), "")
	subcommands.Register(new(deadlockCmd), "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}

// runScenario translates a FatalError from dccthread.Init into the
// subcommand exit status that main hands to os.Exit (see doc.go).
func runScenario(name string, err error) subcommands.ExitStatus {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type pingPongCmd struct{ iterations int }

func (*pingPongCmd) Name() string     { return "ping-pong" }
func (*pingPongCmd) Synopsis() string { return "two threads alternate printing P and Q" }
func (*pingPongCmd) Usage() string    { return "ping-pong [flags]\n" }
func (c *pingPongCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.iterations, "iterations", 3, "number of P/Q print-and-yield rounds")
}

func (c *pingPongCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	err := dccthread.Init(func(int) {
		p, err := dccthread.Create("P", func(int) {
			for i := 0; i < c.iterations; i++ {
				fmt.Print("P ")
				if err := dccthread.Yield(); err != nil {
					log.Fatalf("P: yield: %v", err)
				}
			}
		}, 0)
		if err != nil {
			log.Fatalf("create P: %v", err)
		}
		q, err := dccthread.Create("Q", func(int) {
			for i := 0; i < c.iterations; i++ {
				fmt.Print("Q ")
				if err := dccthread.Yield(); err != nil {
					log.Fatalf("Q: yield: %v", err)
				}
			}
		}, 0)
		if err != nil {
			log.Fatalf("create Q: %v", err)
		}
		if err := dccthread.Wait(p); err != nil {
			log.Fatalf("wait P: %v", err)
		}
		if err := dccthread.Wait(q); err != nil {
			log.Fatalf("wait Q: %v", err)
		}
		fmt.Println()
	}, 0)
	return runScenario("ping-pong", err)
}

type joinFinishedCmd struct{}

func (*joinFinishedCmd) Name() string     { return "join-finished" }
func (*joinFinishedCmd) Synopsis() string { return "wait on a thread that has already terminated" }
func (*joinFinishedCmd) Usage() string    { return "join-finished\n" }
func (*joinFinishedCmd) SetFlags(*flag.FlagSet) {}

func (*joinFinishedCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	err := dccthread.Init(func(int) {
		t, err := dccthread.Create("T", func(int) {}, 0)
		if err != nil {
			log.Fatalf("create T: %v", err)
		}
		if err := dccthread.Wait(t); err != nil {
			log.Fatalf("wait T: %v", err)
		}
		fmt.Println("joined")
	}, 0)
	return runScenario("join-finished", err)
}

type preemptionCmd struct{}

func (*preemptionCmd) Name() string { return "preemption" }
func (*preemptionCmd) Synopsis() string {
	return "a tight CPU loop is preempted so a second thread can run"
}
func (*preemptionCmd) Usage() string { return "preemption\n" }
func (*preemptionCmd) SetFlags(*flag.FlagSet) {}

func (*preemptionCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	err := dccthread.Init(func(int) {
		_, err := dccthread.Create("looper", func(int) {
			deadline := time.Now().Add(3 * dccthread.DefaultQuantum)
			for time.Now().Before(deadline) {
				// Deliberately no Yield/Wait call: this thread only
				// gives up the CPU when the preemption timer forces it.
			}
			fmt.Println("looper done")
		}, 0)
		if err != nil {
			log.Fatalf("create looper: %v", err)
		}
		x, err := dccthread.Create("X", func(int) {
			fmt.Println("X")
		}, 0)
		if err != nil {
			log.Fatalf("create X: %v", err)
		}
		if err := dccthread.Wait(x); err != nil {
			log.Fatalf("wait X: %v", err)
		}
	}, 0)
	return runScenario("preemption", err)
}

type fairnessCmd struct{ rounds int }

func (*fairnessCmd) Name() string     { return "fairness" }
func (*fairnessCmd) Synopsis() string { return "three threads round-robin N times each" }
func (*fairnessCmd) Usage() string    { return "fairness [flags]\n" }
func (c *fairnessCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.rounds, "rounds", 3, "number of print-and-yield rounds per thread")
}

func (c *fairnessCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	err := dccthread.Init(func(int) {
		names := []string{"A", "B", "C"}
		handles := make([]*dccthread.Thread, 0, len(names))
		for _, name := range names {
			name := name
			t, err := dccthread.Create(name, func(int) {
				for i := 0; i < c.rounds; i++ {
					fmt.Print(name + " ")
					if err := dccthread.Yield(); err != nil {
						log.Fatalf("%s: yield: %v", name, err)
					}
				}
			}, 0)
			if err != nil {
				log.Fatalf("create %s: %v", name, err)
			}
			handles = append(handles, t)
		}
		for _, t := range handles {
			if err := dccthread.Wait(t); err != nil {
				log.Fatalf("wait %s: %v", t.Name(), err)
			}
		}
		fmt.Println()
	}, 0)
	return runScenario("fairness", err)
}

type chainedWaitCmd struct{}

func (*chainedWaitCmd) Name() string     { return "chained-wait" }
func (*chainedWaitCmd) Synopsis() string { return "W1 waits on W2, which terminates after printing 2" }
func (*chainedWaitCmd) Usage() string    { return "chained-wait\n" }
func (*chainedWaitCmd) SetFlags(*flag.FlagSet) {}

func (*chainedWaitCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	err := dccthread.Init(func(int) {
		// w2 is assigned below before any thread other than main (this
		// closure) ever runs: Create only enqueues, it never dispatches,
		// so W1's entry cannot observe w2 before the assignment below.
		var w2 *dccthread.Thread
		_, err := dccthread.Create("W1", func(int) {
			if err := dccthread.Wait(w2); err != nil {
				log.Fatalf("W1: wait W2: %v", err)
			}
			fmt.Println("1")
		}, 0)
		if err != nil {
			log.Fatalf("create W1: %v", err)
		}
		w2, err = dccthread.Create("W2", func(int) {
			fmt.Println("2")
		}, 0)
		if err != nil {
			log.Fatalf("create W2: %v", err)
		}
		if err := dccthread.Wait(w2); err != nil {
			log.Fatalf("main: wait W2: %v", err)
		}
	}, 0)
	return runScenario("chained-wait", err)
}

type deadlockCmd struct{}

func (*deadlockCmd) Name() string     { return "deadlock" }
func (*deadlockCmd) Synopsis() string { return "X waits on Y and Y waits on X: FATAL_DEADLOCK" }
func (*deadlockCmd) Usage() string    { return "deadlock\n" }
func (*deadlockCmd) SetFlags(*flag.FlagSet) {}

func (*deadlockCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	err := dccthread.Init(func(int) {
		// As in chainedWaitCmd, x and y are both assigned below before
		// either X or Y's entry ever runs.
		var x, y *dccthread.Thread
		x, err := dccthread.Create("X", func(int) {
			_ = dccthread.Wait(y)
		}, 0)
		if err != nil {
			log.Fatalf("create X: %v", err)
		}
		y, err = dccthread.Create("Y", func(int) {
			_ = dccthread.Wait(x)
		}, 0)
		if err != nil {
			log.Fatalf("create Y: %v", err)
		}
	}, 0)
	return runScenario("deadlock", err)
}
