package models

const (
	// DefaultScheduleCacheTTL время жизни снапшота расписания в Redis
	DefaultScheduleCacheTTL = 5 * 60 // 5 минут в секундах

	// DefaultRetentionDays сколько дней храним завершённые бронирования
	DefaultRetentionDays = 90

	// DefaultRetentionInterval период запуска воркера очистки, в секундах
	DefaultRetentionInterval = 60 * 60 // 1 час

	// RateLimitRequests количество запросов в окне
	RateLimitRequests = 30

	// RateLimitWindow окно ограничения частоты запросов, в секундах
	RateLimitWindow = 60

	// MaxTitleLength максимальная длина названия встречи
	MaxTitleLength = 200
)
