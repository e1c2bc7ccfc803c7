package app

// Config описывает минимальные настройки запуска приложения.
type Config struct {
	// HTTPAddr — адрес публичного API (заказы и каталог).
	HTTPAddr string
	// OpsAddr — адрес служебного сервера (метрики и health-чеки).
	OpsAddr string
	// PostgresDSN — строка подключения к базе. Пустое значение включает
	// in-memory хранилище для локальной разработки.
	PostgresDSN string
	// AutoMigrate применяет up-миграции при старте.
	AutoMigrate bool
	// KafkaBrokers — список брокеров через запятую; пустое значение
	// отключает публикацию событий.
	KafkaBrokers string
}

// DefaultConfig возвращает базовые адреса и поведение по умолчанию.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		OpsAddr:     ":9090",
		AutoMigrate: true,
	}
}
