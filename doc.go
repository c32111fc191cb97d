// Package wiresim is a deterministic stand-in for an asynchronous,
// chunked-transfer HTTP transport. Code written against a transport that
// surfaces headers, body chunks, and completion incrementally can be
// exercised without network I/O: every byte is synthesized locally from a
// caller-supplied recipe.
//
// The driving loop mirrors a real multiplexing transport. A caller-owned
// Context coordinates any number of exchanges; one Context per test run
// is the intended lifecycle:
//
//	dc := wiresim.NewContext()
//	ex := dc.NewExchange(recipe.New(recipe.String("hello"), nil), wiresim.Options{
//		Method: "GET",
//		URL:    "https://example.test/greeting",
//	})
//
//	running := wiresim.Running{}
//	if err := dc.Schedule(ex, running); err != nil {
//		// exchange was not built through a Context
//	}
//	for !ex.Done() {
//		dc.Perform(running)
//		dc.Select(0)
//	}
//
// Each Perform call advances every running exchange by exactly one
// activity unit, in the order headers, body chunks, terminal marker, and
// an optional transport failure. Timeouts and stalls are represented as
// data (KindStall events), never as blocking; Select exists only for
// interface parity with a real transport and always reports readiness.
package wiresim
