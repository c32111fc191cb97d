// Command wiresim replays a YAML scenario of simulated HTTP transfers
// and prints the resulting transcript. No network I/O is performed;
// every response byte is synthesized from the scenario's recipes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wiresim"
	"wiresim/driver"
	"wiresim/internal/extract"
	"wiresim/internal/trace"
	"wiresim/scenario"
)

const (
	ExitSuccess        = 0
	ExitTransferFailed = 1
	ExitError          = 2
)

type transcript struct {
	Name    string         `json:"name"`
	Status  int            `json:"status"`
	Bytes   int            `json:"bytes"`
	Stalls  int            `json:"stalls,omitempty"`
	Failure string         `json:"failure,omitempty"`
	Vars    map[string]any `json:"vars,omitempty"`
	Body    string         `json:"body,omitempty"`
}

func main() {
	scenarioPath := flag.String("scenario", "", "path to YAML scenario file (required)")
	output := flag.String("output", "text", "output format: text, json")
	rps := flag.Int("rps", 0, "pace the replay to N dispatch steps per second (0 = unpaced)")
	quiet := flag.Bool("quiet", false, "suppress per-request output, only set the exit code")
	verbose := flag.Bool("verbose", false, "log every surfaced activity event")
	showBody := flag.Bool("body", false, "include response bodies in the transcript")
	flag.Parse()

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "error: --scenario is required")
		flag.Usage()
		os.Exit(ExitError)
	}
	if *output != "text" && *output != "json" {
		fmt.Fprintf(os.Stderr, "error: --output must be 'text' or 'json', got %q\n", *output)
		os.Exit(ExitError)
	}

	sc, err := scenario.Load(*scenarioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	var logger *trace.Logger
	if *verbose {
		logger = trace.NewConsole(os.Stderr)
	}

	dc := wiresim.NewContext(wiresim.WithTrace(logger))
	d := driver.New(dc)
	if *rps > 0 {
		d.SetRate(*rps)
	}

	var exchanges []*wiresim.Exchange
	for _, req := range sc.Requests {
		exchanges = append(exchanges, dc.NewExchange(req.Recipe(), req.Options()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	results, err := d.Run(ctx, exchanges...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	failed := 0
	transcripts := make([]transcript, len(results))
	for i, res := range results {
		req := sc.Requests[i]
		tr := transcript{
			Name:   req.Name,
			Status: res.Status,
			Bytes:  len(res.Body),
			Stalls: res.Stalls,
		}
		if res.Failure != nil {
			tr.Failure = res.Failure.Error()
			failed++
		}
		if len(req.Extract) > 0 && res.Failure == nil {
			vars, err := extract.FromJSON(res.Body, req.Extract)
			if err != nil {
				tr.Failure = err.Error()
				failed++
			} else {
				tr.Vars = vars
			}
		}
		if *showBody {
			tr.Body = string(res.Body)
		}
		transcripts[i] = tr
	}

	if !*quiet {
		if *output == "json" {
			printJSON(os.Stdout, sc.Name, transcripts)
		} else {
			printText(os.Stdout, sc.Name, transcripts)
		}
	}

	if failed > 0 {
		os.Exit(ExitTransferFailed)
	}
	os.Exit(ExitSuccess)
}

func printText(w *os.File, name string, transcripts []transcript) {
	if name != "" {
		fmt.Fprintf(w, "Scenario: %s\n", name)
	}
	for _, tr := range transcripts {
		fmt.Fprintf(w, "  %-20s status=%d bytes=%d", tr.Name, tr.Status, tr.Bytes)
		if tr.Stalls > 0 {
			fmt.Fprintf(w, " stalls=%d", tr.Stalls)
		}
		if tr.Failure != "" {
			fmt.Fprintf(w, " FAILED: %s", tr.Failure)
		}
		fmt.Fprintln(w)
		for k, v := range tr.Vars {
			fmt.Fprintf(w, "    %s = %v\n", k, v)
		}
		if tr.Body != "" {
			fmt.Fprintf(w, "    body: %s\n", tr.Body)
		}
	}
}

func printJSON(w *os.File, name string, transcripts []transcript) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(struct {
		Scenario string       `json:"scenario,omitempty"`
		Results  []transcript `json:"results"`
	}{Scenario: name, Results: transcripts})
}
