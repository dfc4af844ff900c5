package memory

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestNewShortTermMemory(t *testing.T) {
	m := NewShortTermMemory()
	if m == nil {
		t.Fatal("NewShortTermMemory returned nil")
	}
	if m.Count() != 0 {
		t.Errorf("expected empty memory, got %d outputs", m.Count())
	}
	if m.GetLastOutput() != "" {
		t.Error("expected empty last output")
	}
}

func TestRecordAndContext(t *testing.T) {
	m := NewShortTermMemory()

	if err := m.Record("resolve", "Support Representative", "draft"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if m.Count() != 1 {
		t.Errorf("expected 1 output, got %d", m.Count())
	}

	got, err := m.GetContext([]string{"resolve"})
	if err != nil {
		t.Fatalf("GetContext failed: %v", err)
	}
	if got != "[resolve - Support Representative]:\ndraft" {
		t.Errorf("unexpected context %q", got)
	}

	if _, err := m.GetContext([]string{"review"}); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("review should have no output, got %v", err)
	}
}

func TestRecordTwice(t *testing.T) {
	m := NewShortTermMemory()
	m.Record("resolve", "rep", "first")

	err := m.Record("resolve", "rep", "second")
	if !errors.Is(err, ErrDuplicateOutput) {
		t.Errorf("expected ErrDuplicateOutput, got %v", err)
	}
	if m.GetLastOutput() != "first" {
		t.Error("duplicate record must not replace the original output")
	}
}

func TestGetContext(t *testing.T) {
	m := NewShortTermMemory()
	m.Record("research", "Researcher", "facts")
	m.Record("resolve", "Support Representative", "draft")

	got, err := m.GetContext([]string{"resolve", "research"})
	if err != nil {
		t.Fatalf("GetContext failed: %v", err)
	}
	expected := "[resolve - Support Representative]:\ndraft\n\n[research - Researcher]:\nfacts"
	if got != expected {
		t.Errorf("GetContext mismatch.\nGot:\n%s\n\nExpected:\n%s", got, expected)
	}

	empty, err := m.GetContext(nil)
	if err != nil || empty != "" {
		t.Errorf("expected empty context, got %q (%v)", empty, err)
	}

	_, err = m.GetContext([]string{"missing"})
	if !errors.Is(err, ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
}

func TestLastOutputOrder(t *testing.T) {
	m := NewShortTermMemory()
	if m.GetLastOutput() != "" {
		t.Error("empty memory should have no last output")
	}

	m.Record("a", "r", "1")
	m.Record("b", "r", "2")
	m.Record("c", "r", "3")

	if m.Count() != 3 {
		t.Fatalf("expected 3 outputs, got %d", m.Count())
	}
	if m.GetLastOutput() != "3" {
		t.Errorf("expected last output '3', got '%s'", m.GetLastOutput())
	}
}

func TestConcurrentRecord(t *testing.T) {
	m := NewShortTermMemory()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m.Record(fmt.Sprintf("task-%d", n), "r", "out")
			m.GetContext(nil)
		}(i)
	}
	wg.Wait()

	if m.Count() != 20 {
		t.Errorf("expected 20 outputs, got %d", m.Count())
	}
}
