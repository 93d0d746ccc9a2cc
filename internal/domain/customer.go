package domain

import "time"

// Customer представляет покупателя интернет-магазина.
// Для создания заказа достаточно факта существования записи.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
