package ir

import (
	"strings"
	"testing"
)

func TestPrintSimpleReturn(t *testing.T) {
	fn := NewFunction("main")
	AddSuccessor(fn.Entry, fn.Exit)
	SetReturn(fn.Entry, Const(15), fn.Exit)

	out := PrintFunction(fn)

	if !containsAll(out, []string{
		"function main:",
		"BB0: ; [entry]",
		"return(15)",
		"; succ: [BB1]",
	}) {
		t.Fatalf("unexpected IR text:\n%s", out)
	}
}

func TestPrintBasePointerAnnotation(t *testing.T) {
	fn := NewFunction("f")
	arr := &Value{Name: "arr", Version: 0}
	AppendArrayInit(fn.Entry, arr, []int{10})

	addr := &Value{Name: "addr", Version: 0, Base: arr}
	AppendAssign(fn.Entry, addr, &CopyOp{Value: arr})
	AppendStore(fn.Entry, addr, Const(1))
	AddSuccessor(fn.Entry, fn.Exit)
	SetReturn(fn.Entry, nil, fn.Exit)

	out := PrintFunction(fn)

	if !containsAll(out, []string{
		"(<~)arr_v0",
		"(arr_v0<~)addr_v0",
		"Store(",
	}) {
		t.Fatalf("expected base-pointer annotations in IR:\n%s", out)
	}
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
