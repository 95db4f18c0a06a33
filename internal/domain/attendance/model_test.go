package attendance_test

import (
	"testing"

	"clubify/internal/domain/attendance"
)

// TestAttendance_Validate tests validation of Attendance.
func TestAttendance_Validate(t *testing.T) {
	tests := []struct {
		name    string
		a       attendance.Attendance
		wantErr error
	}{
		{"valid", attendance.Attendance{SessionID: "s1", PlayerID: "p1", Status: attendance.StatusLate}, nil},
		{"missing session", attendance.Attendance{PlayerID: "p1", Status: attendance.StatusPresent}, attendance.ErrEmptySessionID},
		{"missing player", attendance.Attendance{SessionID: "s1", Status: attendance.StatusPresent}, attendance.ErrEmptyPlayerID},
		{"bad status", attendance.Attendance{SessionID: "s1", PlayerID: "p1", Status: "sick"}, attendance.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.a.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		part, whole int
		want        float64
	}{
		{0, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{4, 4, 100},
	}
	for _, tt := range tests {
		if got := attendance.Percentage(tt.part, tt.whole); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %v, want %v", tt.part, tt.whole, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	records := []attendance.Attendance{
		{SessionID: "s1", PlayerID: "p2", Status: attendance.StatusPresent},
		{SessionID: "s2", PlayerID: "p2", Status: attendance.StatusLate},
		{SessionID: "s3", PlayerID: "p2", Status: attendance.StatusAbsent},
		{SessionID: "s1", PlayerID: "p1", Status: attendance.StatusExcused},
		{SessionID: "s2", PlayerID: "p1", Status: attendance.StatusPresent},
	}
	sum := attendance.Summarize(3, records)
	if sum.Sessions != 3 || sum.Recorded != 5 || sum.Attended != 3 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Percentage != 60 {
		t.Errorf("team percentage = %v, want 60", sum.Percentage)
	}
	if len(sum.Players) != 2 || sum.Players[0].PlayerID != "p1" {
		t.Fatalf("players = %+v", sum.Players)
	}
	p2 := sum.Players[1]
	if p2.Present != 1 || p2.Late != 1 || p2.Absent != 1 || p2.Percentage != 66.7 {
		t.Errorf("p2 = %+v", p2)
	}
	if p1 := sum.Players[0]; p1.Excused != 1 || p1.Percentage != 50 {
		t.Errorf("p1 = %+v", p1)
	}
}

func TestSummarize_Empty(t *testing.T) {
	sum := attendance.Summarize(0, nil)
	if sum.Percentage != 0 || len(sum.Players) != 0 {
		t.Errorf("empty summary = %+v", sum)
	}
}
