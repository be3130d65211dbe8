package enums

import "fmt"

type PaymentMethod string

const (
	PaymentMethodIBAN     PaymentMethod = "iban"
	PaymentMethodBanca    PaymentMethod = "banca"
	PaymentMethodBonifico PaymentMethod = "bonifico"
	PaymentMethodAltro    PaymentMethod = "altro"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodIBAN,
	PaymentMethodBanca,
	PaymentMethodBonifico,
	PaymentMethodAltro,
}

func (m PaymentMethod) IsValid() bool {
	for _, v := range validPaymentMethods {
		if m == v {
			return true
		}
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	m := PaymentMethod(raw)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid payment method: %q", raw)
	}
	return m, nil
}
