package fieldname

import "testing"

func TestEncode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"tm_entity:node/body", "tm_entity_X3a_node_X2f_body"},
		{"last_XMas", "last_X5f58_Mas"},
		{"tm;en_title", "tm_X3b_en_title"},
		{"über", "_Xc3bc_ber"},
		{"a b", "a_X20_b"},
		{"plain_name_42", "plain_name_42"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Encode(tc.in); got != tc.want {
			t.Errorf("Encode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"tm_entity_X3a_node_X2f_body", "tm_entity:node/body"},
		{"last_X5f58_Mas", "last_XMas"},
		{"_Xc3bc_ber", "über"},
		{"plain_name", "plain_name"},
		// Odd-length hex is not a byte sequence.
		{"a_Xabc_b", "a_Xabc_b"},
	}
	for _, tc := range tests {
		if got := Decode(tc.in); got != tc.want {
			t.Errorf("Decode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

var roundTripInputs = []string{
	"tm_entity:node/body",
	"last_XMas",
	"_X",
	"__X__X_",
	":_",
	"_:",
	"X_Xa_",
	"ünïcödé ☃ 名前",
	"a\tb\nc",
	"sort;de-AT_title",
	"already_X3a_encoded",
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, in := range roundTripInputs {
		enc := Encode(in)
		if !IsEncoded(enc) {
			t.Errorf("Encode(%q) = %q is not an engine identifier", in, enc)
		}
		if got := Decode(enc); got != in {
			t.Errorf("Decode(Encode(%q)) = %q", in, got)
		}
	}
}

func TestEncode_Idempotent(t *testing.T) {
	for _, in := range []string{"tm_title", "its_count", "a1_b2", "_"} {
		if got := Encode(in); got != in {
			t.Errorf("Encode(%q) = %q, want unchanged", in, got)
		}
		if got := Encode(Encode(in)); got != in {
			t.Errorf("Encode(Encode(%q)) = %q, want unchanged", in, got)
		}
	}
}

func TestIsEncoded(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"tm_X3b_en_title", true},
		{"tm;en_title", false},
		{"", false},
		{"a-b", false},
	}
	for _, tc := range tests {
		if got := IsEncoded(tc.in); got != tc.want {
			t.Errorf("IsEncoded(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func FuzzEncodeDecode(f *testing.F) {
	for _, in := range roundTripInputs {
		f.Add(in)
	}
	f.Add("\xff\xfe")
	f.Add("tm_\xc3")
	f.Add("_X\x80_")

	f.Fuzz(func(t *testing.T, in string) {
		enc := Encode(in)
		if got := Decode(enc); got != in {
			t.Errorf("Decode(Encode(%q)) = %q", in, got)
		}
		if in != "" && !IsEncoded(enc) {
			t.Errorf("Encode(%q) = %q is not an engine identifier", in, enc)
		}
	})
}
