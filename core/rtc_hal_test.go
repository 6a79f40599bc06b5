package core

import "testing"

func TestRTCAlarmDue(t *testing.T) {
	tests := []struct {
		name                  string
		counter, match, fired uint32
		want                  bool
	}{
		{"before match", 99, 100, RTCMatchNever, false},
		{"at match", 100, 100, RTCMatchNever, true},
		{"poll missed the match second", 103, 100, RTCMatchNever, true},
		{"already fired", 103, 100, 100, false},
		{"rearmed after firing", 200, 200, 100, true},
		{"disarmed", 500, RTCMatchNever, 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RTCAlarmDue(tt.counter, tt.match, tt.fired); got != tt.want {
				t.Errorf("RTCAlarmDue(%d, %d, %d) = %v, want %v", tt.counter, tt.match, tt.fired, got, tt.want)
			}
		})
	}
}
