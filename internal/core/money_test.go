package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1.00", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.50", true},
		{"-1", "-1.00", true},
		{"0", "0.00", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := MoneyFromString("0.01").Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := MoneyFromString("0").Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := MoneyFromString("-3").Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{MoneyFromString("12.50")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"amount":12.5}` {
		t.Fatalf("expected bare number, got %s", b)
	}

	for _, raw := range []string{`12.5`, `"12.5"`} {
		var m Money
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if m.String() != "12.50" {
			t.Fatalf("unmarshal %s: got %s", raw, m)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := MoneyFromString("0.1")
	b := MoneyFromString("0.2")
	if !a.Add(b).Equal(MoneyFromString("0.3")) {
		t.Fatalf("expected exact decimal sum, got %s", a.Add(b))
	}
	if !a.Sub(b).IsNegative() {
		t.Fatalf("expected negative difference")
	}
}
