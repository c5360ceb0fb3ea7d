package vkm

import (
	"log"
	"testing"
)

func TestAlignUp(t *testing.T) {
	if alignUp(12, 3) != 12 {
		t.Fail()
	}

	if alignUp(10, 3) != 12 {
		t.Fail()
	}

	if alignUp(0, 256) != 0 {
		t.Fail()
	}
}

func TestPoolAllocator(t *testing.T) {

	a := poolAllocator{size: 1024}

	ra := a.Allocate(2048, 1)
	if ra != nil {
		t.Error("Failed first allocation")
	}

	log.Printf("%v ", a.allocs)

	ra = a.Allocate(512, 1)
	fa := ra
	if ra == nil {
		t.Error("Failed 2nd allocation")
	}

	ra = a.Allocate(768, 1)
	if ra != nil {
		t.Error("Failed 3rd allocation")
	}

	ra = a.Allocate(500, 1)
	k := ra
	if ra == nil {
		t.Error("Failed 4th allocation")
	}

	ra = a.Allocate(50, 1)
	if ra != nil {
		t.Error("Failed 5th allocation")
	}

	ra = a.Allocate(5, 1)
	if ra == nil {
		t.Error("Failed 6th allocation")
	}

	ra = a.Allocate(20, 1)
	if ra != nil {
		t.Error("Failed 7th allocation")
	}

	a.Free(k)
	log.Printf("Free %s", a.String())
	ra = a.Allocate(500, 1)
	if ra == nil {
		t.Error("Failed 8th allocation")
	}

	a.Free(fa)
	ra = a.Allocate(20, 1)
	if ra == nil {
		t.Error("Failed 9th allocation")
	}

	ra = a.Allocate(40, 1)
	if ra == nil {
		t.Error("Failed 10th allocation")
	}

	ra = a.Allocate(12, 1)
	if ra == nil {
		t.Error("Failed 11th allocation")
	}
	ra = a.Allocate(500, 1)
	if ra != nil {
		t.Error("Failed 12th allocation")
	}
	ra = a.Allocate(5, 1)
	if ra == nil {
		t.Error("Failed 13th allocation")
	}
	log.Printf("%s", a.String())
}

func TestPoolAllocatorAlignment(t *testing.T) {
	a := poolAllocator{size: 1024}

	first := a.Allocate(10, 1)
	if first == nil || first.Offset != 0 {
		t.Fatalf("first allocation misplaced: %v", first)
	}

	second := a.Allocate(16, 256)
	if second == nil {
		t.Fatal("aligned allocation failed")
	}
	if second.Offset != 256 {
		t.Errorf("expected offset 256, got %d", second.Offset)
	}

	a.Free(first)
	a.Free(second)
	if a.InUse() != 0 {
		t.Errorf("expected empty allocator, %d in use", a.InUse())
	}
}

func TestPoolAllocatorZeroSize(t *testing.T) {
	a := poolAllocator{size: 1024}
	if a.Allocate(0, 1) != nil {
		t.Error("zero-size allocation should fail")
	}
}
