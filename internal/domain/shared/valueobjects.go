package shared

// TelegramID представляет уникальный идентификатор пользователя Telegram.
// Служит первичным ключом пользователя во всей системе.
type TelegramID int64

// IsValid проверяет, что TelegramID положительный.
func (t TelegramID) IsValid() bool {
	return t > 0
}

// Int64 возвращает числовое представление идентификатора.
func (t TelegramID) Int64() int64 {
	return int64(t)
}
