package game

import "testing"

func TestCubeDoubleChain(t *testing.T) {
	cube := NewDoublingCube()
	if cube.Value() != 1 || cube.Owner() != NoColor {
		t.Fatalf("New cube: value=%d owner=%s", cube.Value(), cube.Owner())
	}

	for i := 0; i < 6; i++ {
		if !cube.Double(White) {
			t.Fatalf("Double %d failed at value %d", i+1, cube.Value())
		}
	}
	if cube.Value() != MaxCubeValue {
		t.Errorf("Expected cube at %d after 6 doubles, got %d", MaxCubeValue, cube.Value())
	}

	// A 7th double is refused and leaves the cube unchanged.
	if cube.Double(White) {
		t.Error("Expected doubling past 64 to fail")
	}
	if cube.Value() != MaxCubeValue {
		t.Errorf("Failed double changed the value to %d", cube.Value())
	}
}

func TestCubeOwnership(t *testing.T) {
	cube := NewDoublingCube()
	if !cube.CanDouble(White) || !cube.CanDouble(Black) {
		t.Error("Expected either side to double a centered cube")
	}

	cube.Take(Black)
	if cube.Value() != 2 || cube.Owner() != Black {
		t.Errorf("Take: value=%d owner=%s", cube.Value(), cube.Owner())
	}
	if cube.CanDouble(White) {
		t.Error("Expected White to be unable to double a black-owned cube")
	}
	if !cube.CanDouble(Black) {
		t.Error("Expected the owner to be able to redouble")
	}

	cube.Reset()
	if cube.Value() != 1 || cube.Owner() != NoColor {
		t.Errorf("Reset: value=%d owner=%s", cube.Value(), cube.Owner())
	}
}
