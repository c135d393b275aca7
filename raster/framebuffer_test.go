package raster

import "testing"

func TestFramebufferSetColorAtRoundTrips(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.SetColorAt(1, 0, [4]float64{1, 0.5, 0, 1})
	got := fb.ColorAt(1, 0)
	want := [4]float64{1, float64(byte(0.5*255 + 0.5)) / 255, 0, 1}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFramebufferResolveBGRASwapsChannels(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	fb.SetColorAt(0, 0, [4]float64{1, 0, 0, 1})
	rgba := fb.Resolve(VisualOrderRGBA)
	if rgba[0] != 255 || rgba[2] != 0 {
		t.Fatalf("RGBA resolve mismatched: %v", rgba)
	}
	bgra := fb.Resolve(VisualOrderBGRA)
	if bgra[0] != 0 || bgra[2] != 255 {
		t.Fatalf("BGRA resolve did not swap channels: %v", bgra)
	}
}

func TestFramebufferOutOfBoundsIsNoop(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	fb.SetColorAt(5, 5, [4]float64{1, 1, 1, 1})
	if got := fb.ColorAt(5, 5); got != ([4]float64{}) {
		t.Fatalf("out-of-bounds read should be zero, got %v", got)
	}
}

func TestVisualOrderTotalOrder(t *testing.T) {
	if !(VisualOrderRGBA < VisualOrderBGRA) {
		t.Fatalf("expected VisualOrderRGBA < VisualOrderBGRA")
	}
}
