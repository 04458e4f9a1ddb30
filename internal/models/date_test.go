package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-03-05", want: "2024-03-05"},
		{in: " 2024-03-05 ", want: "2024-03-05"},
		{in: "2024-03-05T23:30:00+02:00", want: "2024-03-05"},
		{in: "05/03/2024", wantErr: true},
		{in: "2024-02-30", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q): expected error, got %s", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDateMonthBoundaries(t *testing.T) {
	d := NewDate(2024, time.December, 17)

	if got := d.MonthStart().String(); got != "2024-12-01" {
		t.Errorf("MonthStart = %s", got)
	}
	if got := d.MonthEnd().String(); got != "2024-12-31" {
		t.Errorf("MonthEnd = %s", got)
	}
	if got := NewDate(2024, time.February, 10).MonthEnd().String(); got != "2024-02-29" {
		t.Errorf("MonthEnd of leap February = %s", got)
	}
	if got := NewDate(9999, time.December, 5).MonthEnd().String(); got != "9999-12-31" {
		t.Errorf("MonthEnd of the last supported month = %s", got)
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	if err := json.Unmarshal([]byte(`{"date":"2024-03-10"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"date":"2024-03-10"}` {
		t.Errorf("unexpected JSON %s", out)
	}

	if err := json.Unmarshal([]byte(`{"date":null}`), &payload); err == nil {
		t.Error("expected error for null date")
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)); err != nil || d.String() != "2024-03-05" {
		t.Errorf("scan time.Time: %v %s", err, d)
	}
	if err := d.Scan("2024-03-06 00:00:00+00:00"); err != nil || d.String() != "2024-03-06" {
		t.Errorf("scan string: %v %s", err, d)
	}
	if err := d.Scan([]byte("2024-03-07")); err != nil || d.String() != "2024-03-07" {
		t.Errorf("scan bytes: %v %s", err, d)
	}
	if err := d.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}

	v, err := NewDate(2024, time.March, 8).Value()
	if err != nil || v != "2024-03-08" {
		t.Errorf("Value = %v, %v", v, err)
	}
}
