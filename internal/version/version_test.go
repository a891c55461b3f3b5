package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	oldV, oldSHA := Version, GitSHA
	t.Cleanup(func() { Version, GitSHA = oldV, oldSHA })

	Version, GitSHA = "1.2.3", "abc1234"
	s := String()
	for _, want := range []string{"1.2.3", "abc1234", "pointcloud-recorder"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
