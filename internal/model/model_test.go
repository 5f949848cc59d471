package model

import "testing"

func TestParsePosition(t *testing.T) {
	cases := []struct {
		raw  string
		want Position
		ok   bool
	}{
		{raw: "Yea", want: PositionYea, ok: true},
		{raw: "Aye", want: PositionYea, ok: true},
		{raw: "Nay", want: PositionNay, ok: true},
		{raw: "No", want: PositionNay, ok: true},
		{raw: "Present", want: PositionPresent, ok: true},
		{raw: "Not Voting", want: PositionNotVoting, ok: true},
		{raw: "yea", ok: false},
		{raw: "Abstain", ok: false},
		{raw: "", ok: false},
	}

	for _, tc := range cases {
		got, ok := ParsePosition(tc.raw)
		if ok != tc.ok {
			t.Errorf("ParsePosition(%q) ok = %v, want %v", tc.raw, ok, tc.ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("ParsePosition(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestBillKey(t *testing.T) {
	if got := BillKey(118, "hr", 42); got != "118-hr-42" {
		t.Errorf("BillKey = %q, want %q", got, "118-hr-42")
	}

	b := &Bill{Congress: 119, BillType: "sjres", BillNumber: 7}
	if got := b.Key(); got != "119-sjres-7" {
		t.Errorf("Key = %q, want %q", got, "119-sjres-7")
	}
}

func TestRecognizedChamber(t *testing.T) {
	cases := []struct {
		chamber string
		want    bool
	}{
		{"House", true},
		{"Senate", true},
		{"house", false},
		{"Joint", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := RecognizedChamber(tc.chamber); got != tc.want {
			t.Errorf("RecognizedChamber(%q) = %v, want %v", tc.chamber, got, tc.want)
		}
	}
}

func TestRollCallKey(t *testing.T) {
	rc := &RollCall{Congress: 118, SessionNumber: 2, Chamber: ChamberHouse, RollCallNumber: 311}
	if got := rc.Key(); got != "118-2-House-311" {
		t.Errorf("Key = %q, want %q", got, "118-2-House-311")
	}
}
