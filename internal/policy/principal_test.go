package policy

import "testing"

func TestNormalizePrincipal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"999988887777", "arn:aws:iam::999988887777:root"},
		{"arn:aws:iam::999988887777:root", "arn:aws:iam::999988887777:root"},
		{"arn:aws:iam::999988887777:user/evil", "arn:aws:iam::999988887777:user/evil"},
		{"*", "*"},
		{"12345", "12345"}, // too short for an account id
	}
	for _, tt := range tests {
		if got := NormalizePrincipal(tt.in); got != tt.want {
			t.Errorf("NormalizePrincipal(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAccountIDOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"arn:aws:iam::999988887777:root", "999988887777"},
		{"arn:aws:iam::999988887777:user/evil", "999988887777"},
		{"999988887777", "999988887777"},
		{"*", "*"},
	}
	for _, tt := range tests {
		if got := AccountIDOf(tt.in); got != tt.want {
			t.Errorf("AccountIDOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrincipal_UnmarshalWildcard(t *testing.T) {
	var p Principal
	if err := p.UnmarshalJSON([]byte(`"*"`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Any {
		t.Error("Any = false, want true")
	}
}

func TestPrincipal_UnmarshalRejectsOtherStrings(t *testing.T) {
	var p Principal
	if err := p.UnmarshalJSON([]byte(`"arn:aws:iam::1:root"`)); err == nil {
		t.Error("expected error for non-wildcard principal string")
	}
}

func TestPrincipal_ServiceBlock(t *testing.T) {
	var p Principal
	if err := p.UnmarshalJSON([]byte(`{"Service":"logs.amazonaws.com"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.Service.Items(); len(got) != 1 || got[0] != "logs.amazonaws.com" {
		t.Errorf("Service = %v", got)
	}

	out, err := p.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != `{"Service":"logs.amazonaws.com"}` {
		t.Errorf("MarshalJSON = %s", out)
	}
}

func TestValue_SingleVersusList(t *testing.T) {
	single := NewValue("s3:*")
	b, err := single.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != `"s3:*"` {
		t.Errorf("single marshals as %s, want bare string", b)
	}

	list := NewValue("arn:aws:s3:::b", "arn:aws:s3:::b/*")
	b, err = list.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != `["arn:aws:s3:::b","arn:aws:s3:::b/*"]` {
		t.Errorf("list marshals as %s", b)
	}

	forced := ListValue("s3:*")
	b, err = forced.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != `["s3:*"]` {
		t.Errorf("ListValue marshals as %s, want one-element list", b)
	}
}
