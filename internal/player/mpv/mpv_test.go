package mpv

import "testing"

// The replace-tracking bookkeeping runs without an mpv instance; exercised
// here as the pump would drive it.
func TestReplacedLoadEndIsSwallowed(t *testing.T) {
	b := &Backend{}

	// first load: nothing playing, nothing to swallow
	b.markLoad()
	b.markLoaded()

	// replacement while playing: one swallowed end, then the new file loads
	b.markLoad()
	if !b.consumeEnd() {
		t.Fatal("end of the replaced file must be swallowed")
	}
	b.markLoaded()

	// natural end of the replacement surfaces
	if b.consumeEnd() {
		t.Fatal("a natural end must surface")
	}
}

func TestNaturalEndThenFreshLoad(t *testing.T) {
	b := &Backend{}
	b.markLoad()
	b.markLoaded()

	if b.consumeEnd() {
		t.Fatal("a natural end must surface")
	}

	// next load starts from idle; its eventual end surfaces too
	b.markLoad()
	b.markLoaded()
	if b.consumeEnd() {
		t.Fatal("end after a fresh load must surface")
	}
}

func TestBackToBackReplacements(t *testing.T) {
	b := &Backend{}
	b.markLoad()
	b.markLoaded()

	// two rapid replacements queue two swallowed ends
	b.markLoad()
	b.markLoad()
	if !b.consumeEnd() || !b.consumeEnd() {
		t.Fatal("both replaced ends must be swallowed")
	}
	b.markLoaded()
	if b.consumeEnd() {
		t.Fatal("the surviving file's end must surface")
	}
}
