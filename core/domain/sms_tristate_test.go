package domain

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestTristate_JSON(t *testing.T) {
	type wrapper struct {
		V Tristate `json:"v"`
	}
	tests := []struct {
		in   Tristate
		want string
	}{
		{TristateTrue, `{"v":true}`},
		{TristateFalse, `{"v":false}`},
		{TristateUnknown, `{"v":null}`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(wrapper{V: tt.in})
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", tt.in, data, tt.want)
		}

		var back wrapper
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatal(err)
		}
		if back.V != tt.in {
			t.Errorf("round trip of %v = %v", tt.in, back.V)
		}
	}

	var missing wrapper
	if err := json.Unmarshal([]byte(`{}`), &missing); err != nil || missing.V != TristateUnknown {
		t.Errorf("missing field = (%v, %v), want unknown", missing.V, err)
	}
	if err := json.Unmarshal([]byte(`{"v":"yes"}`), &missing); err == nil {
		t.Error("Unmarshal of a string: want error")
	}
}

func TestTristate_Scan(t *testing.T) {
	tests := []struct {
		src     any
		want    Tristate
		wantErr bool
	}{
		{nil, TristateUnknown, false},
		{true, TristateTrue, false},
		{false, TristateFalse, false},
		{int64(1), TristateTrue, false},
		{int64(0), TristateFalse, false},
		{[]byte("t"), TristateTrue, false},
		{"f", TristateFalse, false},
		{"maybe", TristateUnknown, true},
		{3.5, TristateUnknown, true},
	}
	for _, tt := range tests {
		var got Tristate
		err := got.Scan(tt.src)
		if (err != nil) != tt.wantErr {
			t.Errorf("Scan(%v) error = %v, wantErr %v", tt.src, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Scan(%v) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestTristate_ValueAndPtr(t *testing.T) {
	if v, _ := TristateUnknown.Value(); v != nil {
		t.Errorf("Unknown.Value() = %v, want nil", v)
	}
	if v, _ := TristateFalse.Value(); v != false {
		t.Errorf("False.Value() = %v, want false", v)
	}
	if TristateUnknown.Ptr() != nil {
		t.Error("Unknown.Ptr() != nil")
	}
	if p := TristateFalse.Ptr(); p == nil || *p {
		t.Errorf("False.Ptr() = %v", p)
	}
	if FromPtr(nil) != TristateUnknown || FromPtr(TristateTrue.Ptr()) != TristateTrue {
		t.Error("FromPtr does not invert Ptr")
	}
}
