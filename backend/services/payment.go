package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"coursehub/backend/config"
	"coursehub/backend/models"

	"github.com/pkg/errors"
	razorpay "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderRequest struct {
	Amount   int64 // minor currency units
	Currency string
	Receipt  string
	Notes    map[string]interface{}
}

// Gateway creates payment orders with the payment provider. The returned
// order is passed to the client untouched.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (map[string]interface{}, error)
}

type razorpayGateway struct {
	client *razorpay.Client
	logger *zap.Logger
}

func NewRazorpayGateway(cfg *config.Config, logger *zap.Logger) Gateway {
	return &razorpayGateway{
		client: razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
		logger: logger.With(zap.String("service", "RazorpayGateway")),
	}
}

func (g *razorpayGateway) CreateOrder(_ context.Context, req OrderRequest) (map[string]interface{}, error) {
	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		data["notes"] = req.Notes
	}

	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, errors.Wrap(err, "razorpay create order")
	}
	g.logger.Info("order created", zap.Any("order_id", order["id"]), zap.String("receipt", req.Receipt))
	return order, nil
}

// disabledGateway is used when no Razorpay credentials are configured.
type disabledGateway struct{}

func (disabledGateway) CreateOrder(context.Context, OrderRequest) (map[string]interface{}, error) {
	return nil, ErrGatewayDisabled
}

func NewGateway(cfg *config.Config, logger *zap.Logger) Gateway {
	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		logger.Warn("RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET not set, order creation disabled")
		return disabledGateway{}
	}
	return NewRazorpayGateway(cfg, logger)
}

// AmountInMinorUnits converts a course price to paise/cents.
func AmountInMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

func NewReceipt(courseID uint, now time.Time) string {
	return fmt.Sprintf("receipt_%d_%d", courseID, now.UnixMilli())
}

// Sign returns the hex HMAC-SHA256 of "orderID|paymentID", the value the
// gateway sends back as its payment signature.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares the supplied signature byte for byte, in constant time.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Verification is the proof the gateway hands the client after a payment.
type Verification struct {
	OrderID   string
	PaymentID string
	Signature string
	CourseID  uint
}

// Payments runs the two payment steps: order creation before the client-side
// checkout, verification and enrollment after it.
type Payments struct {
	DB       *gorm.DB
	Gateway  Gateway
	Enroller *Enroller
	Secret   string
	Currency string
	Now      func() time.Time
}

func (p *Payments) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Payments) findCourse(ctx context.Context, courseID uint) (*models.Course, error) {
	var course models.Course
	if err := p.DB.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, errors.Wrap(err, "load course")
	}
	return &course, nil
}

// CreateOrder asks the gateway for an order covering the course price.
func (p *Payments) CreateOrder(ctx context.Context, courseID uint) (map[string]interface{}, error) {
	course, err := p.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return p.Gateway.CreateOrder(ctx, OrderRequest{
		Amount:   AmountInMinorUnits(course.Price),
		Currency: p.Currency,
		Receipt:  NewReceipt(course.ID, p.now()),
		Notes:    map[string]interface{}{"courseId": course.ID},
	})
}

// Verify checks the gateway signature and, only when it matches, enrolls the
// student. created is false when the student already had the course.
func (p *Payments) Verify(ctx context.Context, student *models.User, v Verification) (*models.Enrollment, bool, error) {
	if !VerifySignature(p.Secret, v.OrderID, v.PaymentID, v.Signature) {
		return nil, false, ErrInvalidSignature
	}

	course, err := p.findCourse(ctx, v.CourseID)
	if err != nil {
		return nil, false, err
	}

	payment := &models.Payment{OrderID: v.OrderID, PaymentID: v.PaymentID}
	return p.Enroller.Enroll(ctx, student, course, payment)
}
