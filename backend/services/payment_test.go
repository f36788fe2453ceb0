package services_test

import (
	"context"
	"testing"
	"time"

	"coursehub/backend/models"
	"coursehub/backend/services"
	"coursehub/backend/testutil"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureVerification(t *testing.T) {
	sig := services.Sign("secret", "order_1", "pay_1")

	assert.True(t, services.VerifySignature("secret", "order_1", "pay_1", sig))
	assert.False(t, services.VerifySignature("secret", "order_1", "pay_2", sig))
	assert.False(t, services.VerifySignature("other", "order_1", "pay_1", sig))
	assert.False(t, services.VerifySignature("secret", "order_1", "pay_1", "deadbeef"))
	assert.False(t, services.VerifySignature("secret", "order_1", "pay_1", ""))
	assert.False(t, services.VerifySignature("", "order_1", "pay_1", services.Sign("", "order_1", "pay_1")))
}

func TestAmountInMinorUnits(t *testing.T) {
	tests := []struct {
		price float64
		want  int64
	}{
		{500, 50000},
		{0, 0},
		{19.99, 1999},
		{0.1 + 0.2, 30},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, services.AmountInMinorUnits(tt.price), "price %v", tt.price)
	}
}

func TestNewReceipt(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "receipt_7_1700000000123", services.NewReceipt(7, now))
}

func newPayments(t *testing.T) (*services.Services, *testutil.FakeGateway, *testutil.RecordingMailer) {
	t.Helper()
	db := testutil.DB(t)
	gateway := &testutil.FakeGateway{}
	mailer := &testutil.RecordingMailer{}
	svc := services.Compose(db, testutil.Config(), testutil.Logger(), mailer, gateway, services.NewNoopCatalogCache())
	return svc, gateway, mailer
}

func TestCreateOrder(t *testing.T) {
	svc, gateway, _ := newPayments(t)
	db := svc.Payments.DB
	ana := testutil.SeedUser(t, db, "ana", models.RoleInstructor)
	course := testutil.SeedCourse(t, db, ana, "Go", 500)
	svc.Payments.Now = func() time.Time { return time.UnixMilli(42) }

	order, err := svc.Payments.CreateOrder(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, "order_test_1", order["id"])

	require.Len(t, gateway.Orders, 1)
	req := gateway.Orders[0]
	assert.Equal(t, int64(50000), req.Amount)
	assert.Equal(t, "INR", req.Currency)
	assert.Equal(t, services.NewReceipt(course.ID, time.UnixMilli(42)), req.Receipt)
	assert.Equal(t, course.ID, req.Notes["courseId"])
}

func TestCreateOrderErrors(t *testing.T) {
	svc, gateway, _ := newPayments(t)

	_, err := svc.Payments.CreateOrder(context.Background(), 999)
	assert.ErrorIs(t, err, services.ErrCourseNotFound)
	assert.Empty(t, gateway.Orders)

	ana := testutil.SeedUser(t, svc.Payments.DB, "ana", models.RoleInstructor)
	course := testutil.SeedCourse(t, svc.Payments.DB, ana, "Go", 500)
	gateway.Err = errors.New("gateway down")
	_, err = svc.Payments.CreateOrder(context.Background(), course.ID)
	assert.EqualError(t, err, "gateway down")
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	svc, _, mailer := newPayments(t)
	db := svc.Payments.DB
	ana := testutil.SeedUser(t, db, "ana", models.RoleInstructor)
	bo := testutil.SeedUser(t, db, "bo", models.RoleStudent)
	course := testutil.SeedCourse(t, db, ana, "Go", 500)

	sig := services.Sign(testutil.Config().RazorpayKeySecret, "order_1", "pay_1")
	_, _, err := svc.Payments.Verify(context.Background(), bo, services.Verification{
		OrderID:   "order_1",
		PaymentID: "pay_tampered",
		Signature: sig,
		CourseID:  course.ID,
	})
	assert.ErrorIs(t, err, services.ErrInvalidSignature)

	var enrollments, notifications, payments int64
	db.Model(&models.Enrollment{}).Count(&enrollments)
	db.Model(&models.Notification{}).Count(&notifications)
	db.Model(&models.Payment{}).Count(&payments)
	assert.Zero(t, enrollments)
	assert.Zero(t, notifications)
	assert.Zero(t, payments)
	assert.Empty(t, mailer.Sent())
}

func TestVerifyUnknownCourse(t *testing.T) {
	svc, _, _ := newPayments(t)
	bo := testutil.SeedUser(t, svc.Payments.DB, "bo", models.RoleStudent)

	_, _, err := svc.Payments.Verify(context.Background(), bo, services.Verification{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: services.Sign(testutil.Config().RazorpayKeySecret, "order_1", "pay_1"),
		CourseID:  999,
	})
	assert.ErrorIs(t, err, services.ErrCourseNotFound)
}

func TestVerifyRecordsPaymentOnce(t *testing.T) {
	svc, _, mailer := newPayments(t)
	db := svc.Payments.DB
	ana := testutil.SeedUser(t, db, "ana", models.RoleInstructor)
	bo := testutil.SeedUser(t, db, "bo", models.RoleStudent)
	course := testutil.SeedCourse(t, db, ana, "Go", 500)

	v := services.Verification{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: services.Sign(testutil.Config().RazorpayKeySecret, "order_1", "pay_1"),
		CourseID:  course.ID,
	}

	first, created, err := svc.Payments.Verify(context.Background(), bo, v)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Payments.Verify(context.Background(), bo, v)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var payments []models.Payment
	require.NoError(t, db.Find(&payments).Error)
	require.Len(t, payments, 1)
	assert.Equal(t, "pay_1", payments[0].PaymentID)
	assert.Equal(t, first.ID, payments[0].EnrollmentID)
	assert.Equal(t, bo.ID, payments[0].StudentID)

	assert.Len(t, mailer.Sent(), 1)
}
