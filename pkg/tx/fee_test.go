package tx

import "testing"

func TestFee(t *testing.T) {
	tests := []struct {
		name    string
		inputs  int
		outputs int
		want    uint64
	}{
		{"empty", 0, 0, 10_000},
		{"1-in 1-out", 1, 1, 10_000},
		{"1-in 2-out", 1, 2, 10_000},
		{"2-in 2-out", 2, 2, 10_000},
		{"3-in 2-out", 3, 2, 15_000},
		{"1-in 5-out", 1, 5, 25_000},
		{"10-in 1-out", 10, 1, 50_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fee(tt.inputs, tt.outputs); got != tt.want {
				t.Errorf("Fee(%d, %d) = %d, want %d", tt.inputs, tt.outputs, got, tt.want)
			}
		})
	}
}

func TestFee_GraceFloor(t *testing.T) {
	for in := 0; in <= 2; in++ {
		for out := 0; in+out <= 2; out++ {
			if got := Fee(in, out); got != GraceActions*MarginalFee {
				t.Errorf("Fee(%d, %d) = %d, want grace floor %d", in, out, got, GraceActions*MarginalFee)
			}
		}
	}
}

func TestFee_Monotonic(t *testing.T) {
	for out := 0; out <= 6; out++ {
		for in := 0; in < 50; in++ {
			if Fee(in+1, out) < Fee(in, out) {
				t.Fatalf("Fee(%d, %d) < Fee(%d, %d)", in+1, out, in, out)
			}
			if Fee(in, out+1) < Fee(in, out) {
				t.Fatalf("Fee(%d, %d) < Fee(%d, %d)", in, out+1, in, out)
			}
		}
	}
}

func TestMemoOutputSlots(t *testing.T) {
	tests := []struct {
		memoLen int
		want    int
	}{
		{0, 0},
		{1, 1},
		{32, 1},
		{33, 2},
		{66, 2},
		{67, 3},
		{80, 3},
	}
	for _, tt := range tests {
		if got := MemoOutputSlots(tt.memoLen); got != tt.want {
			t.Errorf("MemoOutputSlots(%d) = %d, want %d", tt.memoLen, got, tt.want)
		}
	}
}

func TestFeeWithMemo(t *testing.T) {
	if got := FeeWithMemo(1, 2, 0); got != 10_000 {
		t.Errorf("no memo: fee = %d, want 10000", got)
	}
	// 2 outputs + ceil(82/34) = 3 memo slots.
	if got := FeeWithMemo(1, 2, 80); got != 25_000 {
		t.Errorf("80-byte memo: fee = %d, want 25000", got)
	}
	if got := FeeWithMemo(1, 2, 10); got != 15_000 {
		t.Errorf("10-byte memo: fee = %d, want 15000", got)
	}
}
