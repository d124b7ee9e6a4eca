package paymentgateway

import "errors"

var (
	// ErrGateway возвращается, когда шлюз отказал в создании заказа
	ErrGateway = errors.New("paymentgateway client: gateway error")

	// ErrVerificationRejected возвращается, когда шлюз не подтвердил подпись платежа
	ErrVerificationRejected = errors.New("paymentgateway client: verification rejected")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("paymentgateway client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от шлюза
	ErrInvalidResponse = errors.New("paymentgateway client: invalid response")
)
