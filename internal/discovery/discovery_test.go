package discovery

import "testing"

func TestAdvertiseRequiresIP(t *testing.T) {
	if _, err := Advertise("test-host", false, nil, 8080); err == nil {
		t.Error("expected Advertise to reject a nil IP")
	}
}

func TestAdvertiserCloseOnNilIsSafe(t *testing.T) {
	var a *Advertiser
	a.Close() // must not panic
}
