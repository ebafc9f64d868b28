package store

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scicatalog/catalog/model"
)

func seqOf(files ...*model.File) iter.Seq[model.File] {
	return func(yield func(model.File) bool) {
		for _, f := range files {
			if !yield(*f) {
				return
			}
		}
	}
}

func fidsOf(seq iter.Seq[model.File]) []string {
	var ids []string
	for f := range seq {
		ids = append(ids, f.FID)
	}
	return ids
}

// TestUnionPreservesFirstSeenOrder is spec.md §8 scenario 5:
// union([{f1,f2},{f2,f3}]) yields [f1,f2,f3] in that order.
func TestUnionPreservesFirstSeenOrder(t *testing.T) {
	f1 := model.NewFile("f1", "exp", "f1.dat")
	f2 := model.NewFile("f2", "exp", "f2.dat")
	f3 := model.NewFile("f3", "exp", "f3.dat")

	got := fidsOf(Union(seqOf(f1, f2), seqOf(f2, f3)))
	assert.Equal(t, []string{"f1", "f2", "f3"}, got)
}

// TestSubtractIsLeftMinusRight is spec.md §8 scenario 5:
// {f1,f2,f3} - {f2} yields [f1,f3].
func TestSubtractIsLeftMinusRight(t *testing.T) {
	f1 := model.NewFile("f1", "exp", "f1.dat")
	f2 := model.NewFile("f2", "exp", "f2.dat")
	f3 := model.NewFile("f3", "exp", "f3.dat")

	got := fidsOf(Subtract(seqOf(f1, f2, f3), seqOf(f2)))
	assert.Equal(t, []string{"f1", "f3"}, got)
}

func TestJoinIsMultiWayIntersectionPreservingFirstOperandOrder(t *testing.T) {
	f1 := model.NewFile("f1", "exp", "f1.dat")
	f2 := model.NewFile("f2", "exp", "f2.dat")
	f3 := model.NewFile("f3", "exp", "f3.dat")

	got := fidsOf(Join(seqOf(f1, f2, f3), seqOf(f2, f3), seqOf(f3)))
	assert.Equal(t, []string{"f3"}, got)
}

func TestJoinOfSingleSetIsIdentity(t *testing.T) {
	f1 := model.NewFile("f1", "exp", "f1.dat")
	f2 := model.NewFile("f2", "exp", "f2.dat")

	got := fidsOf(Join(seqOf(f1, f2)))
	assert.Equal(t, []string{"f1", "f2"}, got)
}

func TestJoinOfNoSetsYieldsEmpty(t *testing.T) {
	got := fidsOf(Join())
	assert.Empty(t, got)
}
