package wiresim

import (
	"testing"
	"time"

	"wiresim/recipe"
)

func TestReadResponse_MergesHeaderLines(t *testing.T) {
	dc := NewContext()
	rcp := &recipe.Static{
		Status: 201,
		Headers: []string{
			"Content-Type: application/json",
			"Set-Cookie: a=1",
			"Set-Cookie: b=2",
		},
		Body: recipe.String("{}"),
	}
	ex := dc.NewExchange(rcp, Options{})
	drive(t, dc, ex)

	if got := ex.Headers().Get("content-type"); got != "application/json" {
		t.Errorf("content-type = %q", got)
	}
	if got := ex.Headers().Values("set-cookie"); len(got) != 2 {
		t.Errorf("set-cookie values = %v, expected 2 entries", got)
	}
	if v, _ := ex.Info(InfoStatus); v != 201 {
		t.Errorf("status = %v, expected 201", v)
	}
}

func TestReadResponse_HeadersEmptyBeforeFirstChunk(t *testing.T) {
	dc := NewContext()
	rcp := &recipe.Static{Headers: []string{"X-Late: yes"}, Body: recipe.String("x")}
	ex := dc.NewExchange(rcp, Options{})
	running := Running{}
	if err := dc.Schedule(ex, running); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	if len(ex.Headers()) != 0 {
		t.Errorf("headers populated before first dispatch step: %v", ex.Headers())
	}

	dc.Perform(running) // surfaces the first chunk
	if got := ex.Headers().Get("x-late"); got != "yes" {
		t.Errorf("headers not populated after first chunk: %v", ex.Headers())
	}
}

func TestReadResponse_DeferredHeaderLines(t *testing.T) {
	dc := NewContext()
	rcp := &recipe.Static{
		Headers:  []string{"Content-Type: text/plain"},
		Deferred: []string{"X-Trailer: tail"},
		Body:     recipe.String("x"),
	}
	ex := dc.NewExchange(rcp, Options{})
	drive(t, dc, ex)

	if got := ex.Headers().Get("x-trailer"); got != "tail" {
		t.Errorf("deferred header not merged: %v", ex.Headers())
	}
}

func TestReadResponse_TotalTime(t *testing.T) {
	clock := NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	dc := NewContext(WithClock(clock))
	ex := dc.NewExchange(recipe.New(recipe.String("x"), nil), Options{})
	running := Running{}
	if err := dc.Schedule(ex, running); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	clock.Advance(1500 * time.Millisecond)
	dc.Perform(running)

	v, ok := ex.Info(InfoTotalTime)
	if !ok {
		t.Fatal("total_time not recorded")
	}
	if v != 1.5 {
		t.Errorf("total_time = %v, expected 1.5", v)
	}
}

func TestReadResponse_TotalTimeUntracked(t *testing.T) {
	dc := NewContext()
	ex := dc.NewExchange(recipe.New(recipe.String("x"), nil), Options{
		Track: []string{InfoSizeDownload},
	})
	drive(t, dc, ex)

	if _, ok := ex.Info(InfoTotalTime); ok {
		t.Error("total_time maintained despite not being tracked")
	}
}

func TestReadResponse_ProgressCompleteness(t *testing.T) {
	var calls []progressCall
	dc := NewContext()
	rcp := &recipe.Static{
		Headers: []string{"Content-Length: 8"},
		Body:    recipe.StringChunks("abc", "defgh"),
	}
	ex := dc.NewExchange(rcp, Options{Progress: recordProgress(&calls)})
	drive(t, dc, ex)

	if len(calls) == 0 {
		t.Fatal("progress callback never invoked")
	}

	sawZero := false
	var prev int64
	for _, c := range calls {
		if c.transferred == 0 {
			sawZero = true
		}
		if c.transferred < prev {
			t.Fatalf("progress went backwards: %d after %d", c.transferred, prev)
		}
		prev = c.transferred
	}
	if !sawZero {
		t.Error("progress never invoked with zero transferred")
	}
	if prev != 8 {
		t.Errorf("final progress transferred = %d, expected 8", prev)
	}
	for _, c := range calls[1:] { // first call is the upload-side zero call
		if c.expected != 8 {
			t.Errorf("download progress expected = %d, want declared length 8", c.expected)
		}
	}
}

func TestReadResponse_NoDeclaredLength(t *testing.T) {
	var calls []progressCall
	dc := NewContext()
	ex := dc.NewExchange(
		recipe.New(recipe.StringChunks("abcd"), nil),
		Options{Progress: recordProgress(&calls)},
	)
	drive(t, dc, ex)

	if ex.Failure() != nil {
		t.Errorf("no content-length declared, but transfer failed: %v", ex.Failure())
	}
	for _, c := range calls {
		if c.expected != 0 {
			t.Errorf("expected bytes = %d without declared length, want 0", c.expected)
		}
	}
}

func TestReadResponse_SizeDownloadCounter(t *testing.T) {
	dc := NewContext()
	ex := dc.NewExchange(recipe.New(recipe.StringChunks("abc", "", "de"), nil), Options{})
	drive(t, dc, ex)

	if v, _ := ex.Info(InfoSizeDownload); v != int64(5) {
		t.Errorf("size_download = %v, expected 5", v)
	}
}

func TestReadResponse_MalformedContentLengthIgnored(t *testing.T) {
	dc := NewContext()
	rcp := &recipe.Static{
		Headers: []string{"Content-Length: banana"},
		Body:    recipe.String("xy"),
	}
	ex := dc.NewExchange(rcp, Options{})
	drive(t, dc, ex)

	if ex.Failure() != nil {
		t.Errorf("malformed content-length caused a failure: %v", ex.Failure())
	}
}
