package userservice

import "github.com/m04kA/SMC-EventBooking/internal/domain"

// User профиль пользователя из UserService
type User struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Role    string  `json:"role"`
	Address Address `json:"address"`
}

// Address адрес клиента
type Address struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
}

// DeliveryAddress адрес доставки на основе профиля
func (u *User) DeliveryAddress() *domain.DeliveryAddress {
	if u == nil || u.Address.AddressLine1 == "" {
		return nil
	}
	return &domain.DeliveryAddress{
		SameAsClientAddress: true,
		RecipientName:       u.Name,
		AddressLine1:        u.Address.AddressLine1,
		AddressLine2:        u.Address.AddressLine2,
		City:                u.Address.City,
		State:               u.Address.State,
		Pincode:             u.Address.Pincode,
		ContactNumber:       u.Phone,
	}
}

// ErrorResponse модель ошибки от UserService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
