package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора клиента в заказе.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrLinesRequired = errors.New("order must contain at least one line")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("amount_minor must be non-negative")
	// Ошибка позиции без идентификатора товара.
	ErrLineProductRequired = errors.New("line product_id is required")
	// Ошибка при некорректном количестве товара в позиции (<= 0).
	ErrLineQtyInvalid = errors.New("line qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrLinePriceInvalid = errors.New("line price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order amount does not match lines sum")

	// ErrCustomerNotFound возвращается, если покупатель не найден по идентификатору.
	ErrCustomerNotFound = errors.New("could not find a customer with this id")
	// ErrCustomerNameRequired — ошибка пустого имени покупателя.
	ErrCustomerNameRequired = errors.New("customer name is required")
	// ErrCustomerEmailRequired — ошибка пустого email покупателя.
	ErrCustomerEmailRequired = errors.New("customer email is required")
	// ErrCustomerEmailInUse — email уже занят другим покупателем.
	ErrCustomerEmailInUse = errors.New("customer email is already in use")

	// ErrNoProductsFound возвращается, если batch-поиск товаров не вернул результата вовсе.
	ErrNoProductsFound = errors.New("could not find any product")
	// ErrProductNotFound — хотя бы один запрошенный товар отсутствует в каталоге;
	// оборачивается идентификатором первого отсутствующего товара.
	ErrProductNotFound = errors.New("could not find product")
	// ErrProductNameRequired — ошибка пустого имени товара.
	ErrProductNameRequired = errors.New("product name is required")
	// ErrProductNameInUse — имя товара уже занято.
	ErrProductNameInUse = errors.New("product name is already in use")
	// ErrProductPriceInvalid — отрицательная цена товара.
	ErrProductPriceInvalid = errors.New("product price must be non-negative")
	// ErrProductQuantityInvalid — отрицательный остаток товара.
	ErrProductQuantityInvalid = errors.New("product quantity must be non-negative")
	// ErrInsufficientStock — хотя бы одна позиция превышает доступный остаток.
	ErrInsufficientStock = errors.New("some products exceed the available quantity")

	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists сигнализирует о конфликте идентификаторов при создании.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsNotFound проверяет, является ли ошибка отсутствием сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrNoProductsFound) ||
		errors.Is(err, ErrOrderNotFound)
}
