package value

import "testing"

func TestObject_InsertionOrder(t *testing.T) {
	obj := NewObject()
	obj.ObjectSet("name", String("craft"))
	obj.ObjectSet("version", Int(1))
	obj.ObjectSet("debug", Bool(true))

	keys := obj.Keys()
	want := []string{"name", "version", "debug"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], k)
		}
	}

	// Replacing keeps the original position.
	obj.ObjectSet("name", String("craft2"))
	if obj.Keys()[0] != "name" {
		t.Errorf("replaced key moved: keys = %v", obj.Keys())
	}
	got, _ := obj.ObjectGet("name")
	if s, _ := got.AsString(); s != "craft2" {
		t.Errorf("ObjectGet(name) = %v after replace", got)
	}
}

func TestObject_HasAndGet(t *testing.T) {
	obj := NewObject()
	obj.ObjectSet("present", Null())

	if !obj.ObjectHas("present") {
		t.Error("ObjectHas(present) = false")
	}
	if obj.ObjectHas("missing") {
		t.Error("ObjectHas(missing) = true")
	}
	if _, ok := obj.ObjectGet("missing"); ok {
		t.Error("ObjectGet(missing) reported ok")
	}
}

func TestValue_Accessors(t *testing.T) {
	if b, ok := Bool(true).AsBool(); !ok || !b {
		t.Error("AsBool failed")
	}
	if i, ok := Int(-7).AsInt(); !ok || i != -7 {
		t.Error("AsInt failed")
	}
	if f, ok := Float(2.5).AsFloat(); !ok || f != 2.5 {
		t.Error("AsFloat failed")
	}
	if s, ok := String("hi").AsString(); !ok || s != "hi" {
		t.Error("AsString failed")
	}
	if _, ok := Int(1).AsString(); ok {
		t.Error("AsString on int reported ok")
	}
	if !Null().IsNull() {
		t.Error("zero Value is not null")
	}

	// Number accepts both numeric kinds.
	if n, ok := Int(3).Number(); !ok || n != 3 {
		t.Error("Number on int failed")
	}
	if n, ok := Float(3.5).Number(); !ok || n != 3.5 {
		t.Error("Number on float failed")
	}
	if _, ok := String("3").Number(); ok {
		t.Error("Number on string reported ok")
	}
}

func TestValue_Equal(t *testing.T) {
	a := NewArray(Int(1), String("x"), Null())
	b := NewArray(Int(1), String("x"), Null())
	if !a.Equal(b) {
		t.Error("identical arrays not equal")
	}
	b.Append(Bool(false))
	if a.Equal(b) {
		t.Error("arrays of different length equal")
	}

	// Int and Float never compare equal.
	if Int(1).Equal(Float(1)) {
		t.Error("Int(1) equals Float(1)")
	}

	// Object equality is order-sensitive.
	o1 := NewObject()
	o1.ObjectSet("a", Int(1))
	o1.ObjectSet("b", Int(2))
	o2 := NewObject()
	o2.ObjectSet("b", Int(2))
	o2.ObjectSet("a", Int(1))
	if o1.Equal(o2) {
		t.Error("objects with different key order equal")
	}
}

func TestValue_Clone(t *testing.T) {
	orig := NewObject()
	orig.ObjectSet("list", NewArray(Int(1), Int(2)))
	orig.ObjectSet("name", String("craft"))

	cp := orig.Clone()
	if !cp.Equal(orig) {
		t.Fatal("clone not equal to original")
	}

	// Mutating the clone must not touch the original.
	inner, _ := cp.ObjectGet("list")
	inner.Append(Int(3))
	origList, _ := orig.ObjectGet("list")
	if origList.Len() != 2 {
		t.Errorf("original mutated through clone: len = %d", origList.Len())
	}
}

func TestValue_ArrayOps(t *testing.T) {
	arr := NewArray()
	arr.Append(Int(10))
	arr.Append(Int(20))

	if arr.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", arr.Len())
	}
	if v, ok := arr.At(1); !ok {
		t.Fatal("At(1) failed")
	} else if i, _ := v.AsInt(); i != 20 {
		t.Errorf("At(1) = %v, want 20", v)
	}
	if _, ok := arr.At(2); ok {
		t.Error("At(2) out of range reported ok")
	}
	if _, ok := arr.At(-1); ok {
		t.Error("At(-1) reported ok")
	}
}
