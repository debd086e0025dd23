package mem

import (
	"testing"
	"unsafe"
)

func TestAllocAlignment(t *testing.T) {
	sizes := []int{1, 63, 64, 65, 4096, 1 << 20}

	for _, size := range sizes {
		r, err := Alloc(size)
		if err != nil {
			t.Fatalf("Alloc(%d): %v", size, err)
		}
		b := r.Bytes()
		if len(b) != size {
			t.Errorf("Alloc(%d): got %d usable bytes", size, len(b))
		}
		if !Aligned(unsafe.Pointer(&b[0])) {
			t.Errorf("Alloc(%d): base %p not 64-byte aligned", size, &b[0])
		}
		if err := r.Free(); err != nil {
			t.Errorf("Free after Alloc(%d): %v", size, err)
		}
	}
}

func TestAllocRejectsBadSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := Alloc(size); err != ErrBadSize {
			t.Errorf("Alloc(%d): want ErrBadSize, got %v", size, err)
		}
	}
}

func TestDoubleFree(t *testing.T) {
	r, err := Alloc(128)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Free(); err != nil {
		t.Fatalf("first Free: %v", err)
	}
	if err := r.Free(); err != ErrFreed {
		t.Errorf("second Free: want ErrFreed, got %v", err)
	}
}

func TestLiveCount(t *testing.T) {
	base := Live()

	var regions []*Region
	for i := 0; i < 8; i++ {
		r, err := Alloc(256)
		if err != nil {
			t.Fatal(err)
		}
		regions = append(regions, r)
	}
	if got := Live(); got != base+8 {
		t.Errorf("Live after 8 allocs: got %d, want %d", got, base+8)
	}

	for _, r := range regions {
		if err := r.Free(); err != nil {
			t.Fatal(err)
		}
	}
	if got := Live(); got != base {
		t.Errorf("Live after frees: got %d, want baseline %d", got, base)
	}
}

func TestHeapAllocAlignment(t *testing.T) {
	// The fallback path must align too, not just mmap.
	for i := 0; i < 32; i++ {
		r := heapAlloc(200)
		if !Aligned(unsafe.Pointer(&r.data[0])) {
			t.Fatalf("heapAlloc iteration %d: base not aligned", i)
		}
	}
}
