package process

// Real termination is covered by the browser integration tests; killing an
// arbitrary live process group is not safe in a unit test.

import (
	"errors"
	"runtime"
	"testing"
)

// ---------------------------------------------------------------------------
// TestTerminate - PID Handling
// ---------------------------------------------------------------------------

func TestTerminate_RejectsNonPositivePID(t *testing.T) {
	t.Parallel()

	// PID 0 would target the current process group.
	for _, pid := range []int{0, -1} {
		if err := Terminate(pid); !errors.Is(err, ErrInvalidPID) {
			t.Errorf("Terminate(%d) error = %v, want ErrInvalidPID", pid, err)
		}
	}
}

func TestTerminate_MissingProcessGroup(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("taskkill reports missing processes as errors")
	}
	if err := Terminate(999999999); err != nil {
		t.Errorf("Terminate(missing) error = %v, want nil", err)
	}
}
