// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден (запись или файл на диске).
	ErrNotFound = errors.New("ресурс не найден")
	// ErrForbidden — запись принадлежит другому пользователю.
	ErrForbidden = errors.New("нет доступа к ресурсу")
	// ErrUnauthorized — неверные учётные данные.
	ErrUnauthorized = errors.New("неверный email или пароль")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
)
