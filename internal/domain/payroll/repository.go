package payroll

import "context"

// PayrollRepository defines data access methods for payroll.
type PayrollRepository interface {
	// CreatePayrollRecord fails with ErrPayrollRecordAlreadyExists when the
	// employee already has a record for the period.
	CreatePayrollRecord(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetPayrollRecordByID(ctx context.Context, id string) (PayrollRecord, error)
	ListPayrollRecords(ctx context.Context, filter PayrollFilter) ([]PayrollRecord, int64, error)
	// MarkPaid moves a draft record to paid. A paid record yields ErrPayrollRecordAlreadyPaid.
	MarkPaid(ctx context.Context, id string, paidBy string) (PayrollRecord, error)
	// DeleteDraft removes a draft record. A paid record yields ErrCannotDeletePaidRecord.
	DeleteDraft(ctx context.Context, id string) error
}
