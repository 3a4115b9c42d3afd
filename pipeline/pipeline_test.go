package pipeline

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/aluiziolira/go-steam-search/models"
)

type mockWriter struct {
	mu       sync.Mutex
	batches  [][]*models.AppDetail
	closed   bool
	writeErr error
}

func (mw *mockWriter) Write(details []*models.AppDetail) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	if mw.writeErr != nil {
		return mw.writeErr
	}
	copyBatch := make([]*models.AppDetail, len(details))
	copy(copyBatch, details)
	mw.batches = append(mw.batches, copyBatch)
	return nil
}

func (mw *mockWriter) Close() error {
	mw.mu.Lock()
	mw.closed = true
	mw.mu.Unlock()
	return nil
}

func (mw *mockWriter) Validate() error {
	return nil
}

func (mw *mockWriter) names() []string {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	var out []string
	for _, batch := range mw.batches {
		for _, d := range batch {
			out = append(out, d.Name)
		}
	}
	return out
}

func (mw *mockWriter) batchSizes() []int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	sizes := make([]int, 0, len(mw.batches))
	for _, batch := range mw.batches {
		sizes = append(sizes, len(batch))
	}
	return sizes
}

func TestPipelineProcessValidation(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(writer, 0)
	p.Start()

	valid := &models.AppDetail{Name: "Subnautica"}
	invalid := &models.AppDetail{Name: " "}
	duplicate := &models.AppDetail{Name: "Subnautica"}

	if err := p.Process(valid, invalid, nil, duplicate); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := writer.names(); len(got) != 2 {
		t.Fatalf("written details = %v, want 2 (duplicates are kept)", got)
	}

	metrics := p.GetMetrics()
	validation, ok := metrics["validation_errors"].(map[string]int)
	if !ok {
		t.Fatalf("expected validation errors map")
	}
	if validation["invalid_record"] != 1 {
		t.Fatalf("invalid_record = %d, want 1", validation["invalid_record"])
	}
	if written := metrics["written_details"].(int64); written != 2 {
		t.Fatalf("written_details = %d, want 2", written)
	}
}

func TestPipelinePreservesOrder(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(writer, 3)
	p.Start()

	var want []string
	for i := 0; i < 10; i++ {
		name := "App " + strconv.Itoa(i)
		want = append(want, name)
		if err := p.Process(&models.AppDetail{Name: name}); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got := writer.names()
	if len(got) != len(want) {
		t.Fatalf("written = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPipelineBatchFlushThreshold(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(writer, 64)
	p.Start()

	for i := 0; i < 65; i++ {
		if err := p.Process(&models.AppDetail{Name: "App"}); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	sizes := writer.batchSizes()
	if len(sizes) != 2 || sizes[0] != 64 || sizes[1] != 1 {
		t.Fatalf("batch sizes = %v, want [64 1]", sizes)
	}
}

func TestPipelineProcessAfterClose(t *testing.T) {
	p := NewPipeline(&mockWriter{}, 1)
	p.Start()
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Process(&models.AppDetail{Name: "Late"}); !errors.Is(err, ErrPipelineClosed) {
		t.Fatalf("expected ErrPipelineClosed, got %v", err)
	}
}

func TestPipelineWriteError(t *testing.T) {
	writer := &mockWriter{writeErr: errors.New("disk full")}
	p := NewPipeline(writer, 1)
	p.Start()

	_ = p.Process(&models.AppDetail{Name: "App"})
	err := p.Close()
	if err == nil || !errors.Is(err, writer.writeErr) {
		t.Fatalf("expected write error, got %v", err)
	}
}
