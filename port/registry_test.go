//go:build !rp2040 && !rp2350

package port

import (
	"testing"

	"latchfw/errcode"
	"latchfw/types"
)

func TestRegistryClaimRelease(t *testing.T) {
	r := NewRegistry(NewHostProvider())
	ref := types.PortRef{Name: "portb", Type: types.PortMem}

	p1, err := r.Claim("fw", ref)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if _, err := r.Claim("other", ref); err != errcode.PortInUse {
		t.Fatalf("second owner: err = %v, want port_in_use", err)
	}
	// Same owner may claim again.
	if p, err := r.Claim("fw", ref); err != nil || p != p1 {
		t.Fatalf("re-claim by owner: p=%v err=%v", p, err)
	}

	if err := r.Release("other", "portb"); err != errcode.PortInUse {
		t.Fatalf("release by non-owner: err = %v, want port_in_use", err)
	}
	if _, err := r.Claim("other", ref); err != errcode.PortInUse {
		t.Fatalf("release by non-owner should not free the port, err = %v", err)
	}

	if err := r.Release("fw", "portb"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := r.Release("fw", "portb"); err != nil {
		t.Fatalf("second Release should be a no-op, err = %v", err)
	}
	if err := r.Release("fw", "portq"); err != errcode.UnknownPort {
		t.Fatalf("release of unopened port: err = %v, want unknown_port", err)
	}
	p2, err := r.Claim("other", ref)
	if err != nil {
		t.Fatalf("Claim after release: %v", err)
	}
	if p2 != p1 {
		t.Fatal("re-opened port should be the cached instance")
	}
	if got, ok := r.Lookup("portb"); !ok || got != p1 {
		t.Fatal("Lookup should return the cached port")
	}
}

func TestRegistryOpenErrors(t *testing.T) {
	r := NewRegistry(NewHostProvider())
	cases := []struct {
		ref  types.PortRef
		want errcode.Code
	}{
		{types.PortRef{Type: types.PortMem}, errcode.InvalidParams},
		{types.PortRef{Name: "x", Type: types.PortPins}, errcode.InvalidParams},
		{types.PortRef{Name: "y", Type: types.PortPCF8574, Bus: "i2c9"}, errcode.UnknownBus},
		{types.PortRef{Name: "z", Type: "spi"}, errcode.InvalidParams},
	}
	for _, c := range cases {
		_, err := r.Claim("fw", c.ref)
		if errcode.Of(err) != c.want {
			t.Fatalf("Claim(%+v) err = %v, want %s", c.ref, err, c.want)
		}
	}
	if _, ok := r.Lookup("x"); ok {
		t.Fatal("failed opens must not be cached")
	}
}
