package access

import "testing"

func TestTierFor(t *testing.T) {
	cases := []struct {
		status Status
		want   Tier
	}{
		{StatusFullAccess, TierFull},
		{StatusAuthorized, TierFull}, // legacy unrestricted value
		{StatusWriteOnly, TierWriteOnly},
		{StatusDenied, TierNone},
		{StatusRestricted, TierNone},
		{StatusNotDetermined, TierNone},
		{Status("someFutureStatus"), TierNone},
		{Status(""), TierNone},
	}
	for _, c := range cases {
		if got := TierFor(c.status); got != c.want {
			t.Errorf("TierFor(%q) = %v, want %v", c.status, got, c.want)
		}
	}
}

func TestTierString(t *testing.T) {
	if TierFull.String() != "full" || TierWriteOnly.String() != "writeOnly" || TierNone.String() != "none" {
		t.Errorf("unexpected tier names: %v %v %v", TierFull, TierWriteOnly, TierNone)
	}
}
