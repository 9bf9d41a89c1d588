package spatialindex

import (
	"testing"

	"go.viam.com/test"
)

func TestKDTreeNearestSinglePoint(t *testing.T) {
	tr := NewKDTree(2)
	tr.Insert(1, []float64{0, 0})
	id, ok := tr.Nearest([]float64{1, 1})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, id, test.ShouldEqual, 1)
}

func TestKDTreeNearestEmpty(t *testing.T) {
	tr := NewKDTree(2)
	_, ok := tr.Nearest([]float64{0, 0})
	test.That(t, ok, test.ShouldBeFalse)
}

func TestKDTreeNearestPicksClosest(t *testing.T) {
	tr := NewKDTree(2)
	tr.Insert(1, []float64{0, 0})
	tr.Insert(2, []float64{10, 10})
	tr.Insert(3, []float64{1, 1})
	id, ok := tr.Nearest([]float64{0.5, 0.5})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, id == 1 || id == 3, test.ShouldBeTrue)
}

func TestKDTreeNearestN(t *testing.T) {
	tr := NewKDTree(1)
	for i := 0; i < 10; i++ {
		tr.Insert(i, []float64{float64(i)})
	}
	ids := tr.NearestN([]float64{4.1}, 3)
	test.That(t, len(ids), test.ShouldEqual, 3)
	test.That(t, ids[0], test.ShouldEqual, 4)
}

func TestKDTreeNearestNMoreThanAvailable(t *testing.T) {
	tr := NewKDTree(1)
	tr.Insert(1, []float64{0})
	tr.Insert(2, []float64{1})
	ids := tr.NearestN([]float64{0}, 10)
	test.That(t, len(ids), test.ShouldEqual, 2)
}

func TestKDTreeLenGrowsMonotonically(t *testing.T) {
	tr := NewKDTree(2)
	test.That(t, tr.Len(), test.ShouldEqual, 0)
	tr.Insert(1, []float64{0, 0})
	tr.Insert(2, []float64{1, 1})
	test.That(t, tr.Len(), test.ShouldEqual, 2)
}

func TestKDTreeCountAt(t *testing.T) {
	tr := NewKDTree(2)
	tr.Insert(1, []float64{0, 0})
	tr.Insert(2, []float64{0, 0})
	tr.Insert(3, []float64{1, 1})
	test.That(t, tr.CountAt([]float64{0, 0}), test.ShouldEqual, 2)
	test.That(t, tr.CountAt([]float64{9, 9}), test.ShouldEqual, 0)
}
