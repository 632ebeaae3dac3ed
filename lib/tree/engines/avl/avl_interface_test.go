package avl

import (
	"testing"

	"github.com/ValentinKolb/tKV/lib/tree"
	treetesting "github.com/ValentinKolb/tKV/lib/tree/testing"
)

func Test(t *testing.T) {
	treetesting.RunTreeMapTests(t, "AVL", func() tree.Map[int64, int64] {
		return New[int64, int64](nil)
	})
}

func Benchmark(b *testing.B) {
	treetesting.RunTreeMapBenchmarks(b, "AVL", func() tree.Map[int64, int64] {
		return New[int64, int64](nil)
	})
}
