package eventing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sweepArgs struct{ spanID uint64 }
type sweepResult struct{ timedOut bool }

func TestParentChainReceivesDescendantEvents(t *testing.T) {
	var seenByRoot []uint64

	root := NewOperation(nil)
	root.OnStart(func(op *Operation, a sweepArgs) {
		seenByRoot = append(seenByRoot, a.spanID)
	})

	child := NewOperation(root)
	child.Start(sweepArgs{spanID: 7})

	grandchild := NewOperation(child)
	grandchild.Start(sweepArgs{spanID: 9})

	assert.Equal(t, []uint64{7, 9}, seenByRoot)
}

func TestFinishDisablesFurtherEvents(t *testing.T) {
	calls := 0
	op := NewOperation(nil)
	op.OnFinish(func(op *Operation, r sweepResult) {
		calls++
	})

	op.Finish(sweepResult{timedOut: true})
	assert.Equal(t, 1, calls)

	// A second Finish after disable must not re-invoke listeners: they
	// were cleared, matching spec.md's "event arrives after terminal
	// sweep: silent drop".
	op.Finish(sweepResult{timedOut: false})
	assert.Equal(t, 1, calls)
}

func TestEmitDataPropagatesToAncestorsOnly(t *testing.T) {
	type data struct{ v int }
	var got []int
	root := NewOperation(nil)
	root.OnData(func(op *Operation, d data) {
		got = append(got, d.v)
	})
	child := NewOperation(root)
	child.EmitData(data{v: 42})
	assert.Equal(t, []int{42}, got)
}
