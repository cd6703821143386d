package crypto

import "testing"

func TestNormalizeCPF(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"529.982.247-25", "52998224725", false},
		{"52998224725", "52998224725", false},
		{"529 982 247 25", "52998224725", false},
		{"5299822472", "", true},
		{"529982247255", "", true},
		{"529.982.247-2a", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := NormalizeCPF(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("NormalizeCPF(%q) = %q; esperava erro", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeCPF(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeCPF(%q) = %q; esperava %q", tc.in, got, tc.want)
		}
	}
}

func TestCPFHashDeterministic(t *testing.T) {
	a := CPFHash("52998224725")
	b := CPFHash("52998224725")
	if a != b {
		t.Fatalf("hashes diferentes para o mesmo CPF: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("tamanho do hash = %d; esperava 64 hex", len(a))
	}
	if a == CPFHash("52998224726") {
		t.Fatal("CPFs diferentes geraram o mesmo hash")
	}
}
