package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"storefront/internal/domain/model"
)

// 入力が不正
var ErrInvalidInput = errors.New("invalid input")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateBilling は請求先フォームを検証し、前後の空白を落とした値を返す。
// 支払い方法が空なら代引き。
func ValidateBilling(in model.BillingDetails) (model.BillingDetails, error) {
	b := model.BillingDetails{
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Company:       strings.TrimSpace(in.Company),
		Country:       strings.TrimSpace(in.Country),
		Address:       strings.TrimSpace(in.Address),
		City:          strings.TrimSpace(in.City),
		Province:      strings.TrimSpace(in.Province),
		ZipCode:       strings.TrimSpace(in.ZipCode),
		Phone:         strings.TrimSpace(in.Phone),
		Email:         strings.TrimSpace(in.Email),
		Notes:         strings.TrimSpace(in.Notes),
		PaymentMethod: in.PaymentMethod,
	}

	// 必須チェック
	required := []struct {
		name  string
		value string
	}{
		{"first_name", b.FirstName},
		{"last_name", b.LastName},
		{"country", b.Country},
		{"address", b.Address},
		{"city", b.City},
		{"province", b.Province},
		{"zip_code", b.ZipCode},
		{"phone", b.Phone},
		{"email", b.Email},
	}
	for _, f := range required {
		if f.value == "" {
			return model.BillingDetails{}, fmt.Errorf("%w: %s required", ErrInvalidInput, f.name)
		}
	}

	// email形式
	if !isEmailLike(b.Email) {
		return model.BillingDetails{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}

	switch b.PaymentMethod {
	case "":
		b.PaymentMethod = model.PaymentMethodCOD
	case model.PaymentMethodCOD, model.PaymentMethodBankTransfer:
	default:
		return model.BillingDetails{}, fmt.Errorf("%w: invalid payment_method", ErrInvalidInput)
	}

	return b, nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailPattern.MatchString(s)
}
