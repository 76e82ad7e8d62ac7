package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "ggd-go/"+Current+" (") {
		t.Errorf("UserAgent() = %q, want ggd-go/%s prefix", ua, Current)
	}
	if !strings.Contains(ua, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("UserAgent() = %q, missing platform", ua)
	}
}

func TestString(t *testing.T) {
	got := String("ggd-client")
	if !strings.HasPrefix(got, "ggd-client "+Current) {
		t.Errorf("String() = %q", got)
	}
}
