package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 3, Duration(day("2026-01-10"), day("2026-01-12")))
	assert.Equal(t, 1, Duration(day("2026-01-10"), day("2026-01-10")))
	assert.Equal(t, 32, Duration(day("2026-01-01"), day("2026-02-01")))
}

func TestOverlaps(t *testing.T) {
	s, e := day("2026-01-10"), day("2026-01-12")

	assert.True(t, Overlaps(s, e, day("2026-01-11"), day("2026-01-13")))
	assert.True(t, Overlaps(s, e, day("2026-01-12"), day("2026-01-12")), "shared end day")
	assert.True(t, Overlaps(s, e, day("2026-01-01"), day("2026-01-31")), "containing range")
	assert.False(t, Overlaps(s, e, day("2026-01-13"), day("2026-01-15")))
	assert.False(t, Overlaps(s, e, day("2026-01-05"), day("2026-01-09")))
}

func TestTypeRules(t *testing.T) {
	assert.True(t, TypePaid.Deductible())
	assert.True(t, TypeSick.Deductible())
	assert.False(t, TypeUnpaid.Deductible())
	assert.False(t, Type("bereavement").Valid())
}

func TestSummarize(t *testing.T) {
	s := Summarize([]LeaveRequest{
		{Type: TypePaid, Status: StatusApproved, Duration: 3},
		{Type: TypePaid, Status: StatusPending, Duration: 2},
		{Type: TypeSick, Status: StatusApproved, Duration: 1},
		{Type: TypeUnpaid, Status: StatusRejected, Duration: 5},
	})

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.ByStatus[StatusApproved])
	assert.Equal(t, 1, s.ByStatus[StatusPending])
	assert.Equal(t, 1, s.ByStatus[StatusRejected])
	assert.Equal(t, 3, s.ApprovedDays[TypePaid])
	assert.Equal(t, 1, s.ApprovedDays[TypeSick])
	assert.Equal(t, 0, s.ApprovedDays[TypeUnpaid])
}

func TestApplyLeaveRequest_Validate(t *testing.T) {
	req := ApplyLeaveRequest{Type: "paid", StartDate: "2026-01-10", EndDate: "2026-01-12", Reason: " trip "}
	assert.NoError(t, req.Validate())
	start, end := req.Dates()
	assert.Equal(t, day("2026-01-10"), start)
	assert.Equal(t, day("2026-01-12"), end)
	assert.Equal(t, "trip", req.Reason)

	bad := ApplyLeaveRequest{Type: "holiday", StartDate: "10-01-2026", EndDate: "", Reason: ""}
	err := bad.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "leave_type")
	assert.Contains(t, err.Error(), "start_date")
	assert.Contains(t, err.Error(), "end_date")
	assert.Contains(t, err.Error(), "reason")
}

func TestLeaveFilter_Validate(t *testing.T) {
	f := LeaveFilter{StartDate: "2026-02-01", EndDate: "2026-01-01"}
	assert.Error(t, f.Validate())

	f = LeaveFilter{Status: "approved", StartDate: "2026-01-01", EndDate: "2026-01-31"}
	assert.NoError(t, f.Validate())
	assert.Equal(t, day("2026-01-01"), *f.From)
}
