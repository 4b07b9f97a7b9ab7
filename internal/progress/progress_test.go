package progress

import "testing"

type stringerErr struct{ s string }

func (e stringerErr) String() string { return e.s }

func TestNullSinkIsNoOp(t *testing.T) {
	var sink Sink = NullSink{}
	sink.Start(10)
	sink.Tick(1, 100, "a.txt")
	sink.Finish(stringerErr{"done"})
}

func TestBarSpinnerModeDoesNotPanic(t *testing.T) {
	bar := NewBar()
	bar.Start(-1)
	bar.Tick(1, 10, "a.txt")
	bar.Finish(stringerErr{"done"})
}

func TestBarKnownTotalDoesNotPanic(t *testing.T) {
	bar := NewBar()
	bar.Start(5)
	for i := int64(1); i <= 5; i++ {
		bar.Tick(i, i*10, "a.txt")
	}
	bar.Finish(stringerErr{"done"})
}

func TestBarTickBeforeStartIsNoOp(t *testing.T) {
	bar := &Bar{}
	bar.Tick(1, 1, "a.txt")
	bar.Finish(stringerErr{"done"})
}
