package domain

import "time"

// Product представляет товар каталога с текущим остатком на складе.
type Product struct {
	ID string
	// Name — уникальное имя товара в каталоге.
	Name string
	// PriceMinor — текущая цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// Quantity — доступный остаток, уменьшается при создании заказа.
	Quantity  int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LineRequest — запрошенная позиция заказа: товар и количество.
type LineRequest struct {
	ProductID string
	Qty       int32
}

// QuantityUpdate задаёт новый абсолютный остаток товара после заказа.
type QuantityUpdate struct {
	ProductID string
	Qty       int32
}
