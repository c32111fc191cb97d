package wiresim

import (
	"errors"
	"strings"
	"testing"

	"wiresim/recipe"
)

type progressCall struct {
	transferred int64
	expected    int64
}

func recordProgress(calls *[]progressCall) ProgressFunc {
	return func(transferred, expected int64, _ map[string]any) {
		*calls = append(*calls, progressCall{transferred, expected})
	}
}

func TestWriteRequest_StringBody(t *testing.T) {
	var calls []progressCall
	dc := NewContext()
	ex := dc.NewExchange(recipe.New(recipe.String("ok"), nil), Options{
		Body:     StringBody("payload"),
		Progress: recordProgress(&calls),
	})
	if err := dc.Schedule(ex, Running{}); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	if v, _ := ex.Info(InfoSizeUpload); v != int64(7) {
		t.Errorf("size_upload = %v, expected 7", v)
	}
	if len(calls) < 2 {
		t.Fatalf("progress called %d times, expected initial zero call plus one per chunk", len(calls))
	}
	if calls[0].transferred != 0 {
		t.Errorf("first progress call transferred = %d, expected 0", calls[0].transferred)
	}
	if last := calls[len(calls)-1]; last.transferred != 7 || last.expected != 7 {
		t.Errorf("final progress call = %+v, expected (7, 7)", last)
	}
}

func TestWriteRequest_EmptyBody(t *testing.T) {
	var calls []progressCall
	dc := NewContext()
	ex := dc.NewExchange(recipe.New(recipe.String("ok"), nil), Options{
		Progress: recordProgress(&calls),
	})
	if err := dc.Schedule(ex, Running{}); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	if _, ok := ex.Info(InfoSizeUpload); ok {
		t.Error("size_upload set for empty body")
	}
	if len(calls) != 1 || calls[0].transferred != 0 {
		t.Errorf("progress calls = %v, expected single zero call", calls)
	}
}

func TestWriteRequest_ReaderDrainedInChunks(t *testing.T) {
	var calls []progressCall
	payload := strings.Repeat("z", MaxUploadChunk+100)
	dc := NewContext()
	ex := dc.NewExchange(recipe.New(recipe.String("ok"), nil), Options{
		Body:     ReaderBody(strings.NewReader(payload)),
		Progress: recordProgress(&calls),
	})
	if err := dc.Schedule(ex, Running{}); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	if v, _ := ex.Info(InfoSizeUpload); v != int64(len(payload)) {
		t.Errorf("size_upload = %v, expected %d", v, len(payload))
	}
	// Initial zero call plus one call per 16372-byte read.
	if len(calls) != 3 {
		t.Fatalf("progress called %d times, expected 3", len(calls))
	}
	if calls[1].transferred != MaxUploadChunk {
		t.Errorf("first chunk transferred = %d, expected %d", calls[1].transferred, MaxUploadChunk)
	}
	if calls[2].transferred != int64(len(payload)) {
		t.Errorf("final transferred = %d, expected %d", calls[2].transferred, len(payload))
	}
}

func TestWriteRequest_ProviderCalledUntilEmpty(t *testing.T) {
	chunks := []string{"first", "second", ""}
	var maxSeen []int
	i := 0
	provider := func(max int) ([]byte, error) {
		maxSeen = append(maxSeen, max)
		c := chunks[i]
		i++
		return []byte(c), nil
	}

	dc := NewContext()
	ex := dc.NewExchange(recipe.New(recipe.String("ok"), nil), Options{
		Body: ProviderBody(provider),
	})
	if err := dc.Schedule(ex, Running{}); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	if i != 3 {
		t.Errorf("provider called %d times, expected 3 (until empty)", i)
	}
	for _, m := range maxSeen {
		if m != MaxUploadChunk {
			t.Errorf("provider called with max %d, expected %d", m, MaxUploadChunk)
		}
	}
	if v, _ := ex.Info(InfoSizeUpload); v != int64(len("first")+len("second")) {
		t.Errorf("size_upload = %v, expected 11", v)
	}
}

func TestWriteRequest_ProviderErrorRecorded(t *testing.T) {
	boom := errors.New("producer yielded garbage")
	dc := NewContext()
	ex := dc.NewExchange(recipe.New(recipe.String("ok"), nil), Options{
		URL:  "https://example.test/up",
		Body: ProviderBody(func(int) ([]byte, error) { return nil, boom }),
	})
	drive(t, dc, ex)

	events := dc.Events(ex.ID())
	last := events[len(events)-1]
	if last.Kind != KindFailure {
		t.Fatalf("expected trailing failure event, got %v", last.Kind)
	}
	if !errors.Is(last.Err, boom) {
		t.Errorf("failure cause = %v, expected wrapped provider error", last.Err)
	}
	var te *TransferError
	if !errors.As(last.Err, &te) || te.Op != "write" {
		t.Errorf("failure = %v, expected write-side TransferError", last.Err)
	}
}

func TestWriteRequest_UntrackedUploadCounter(t *testing.T) {
	dc := NewContext()
	ex := dc.NewExchange(recipe.New(recipe.String("ok"), nil), Options{
		Body:  StringBody("payload"),
		Track: []string{InfoTotalTime}, // size_upload deliberately absent
	})
	if err := dc.Schedule(ex, Running{}); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	if v, ok := ex.Info(InfoSizeUpload); ok {
		t.Errorf("size_upload maintained despite not being tracked: %v", v)
	}
}
