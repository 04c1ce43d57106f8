package health

import "testing"

func TestCollectReturnsLiveProcessStats(t *testing.T) {
	c, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	stats := c.Collect()

	if stats.RSSBytes == 0 {
		t.Error("RSSBytes = 0, want nonzero for the running test process")
	}
	if stats.Goroutines < 1 {
		t.Errorf("Goroutines = %d, want >= 1", stats.Goroutines)
	}
}
