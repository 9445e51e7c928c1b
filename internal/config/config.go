package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config содержит настройки приложения
type Config struct {
	HTTPAddr   string // Адрес HTTP сервера
	DBHost     string // Хост базы данных
	DBPort     string // Порт базы данных
	DBUser     string // Пользователь базы данных
	DBPassword string // Пароль базы данных
	DBName     string // Имя базы данных

	NatsURL    string // Адрес NATS, пусто — события не публикуются
	KeyRateURL string // SOAP-сервис ключевой ставки

	LoanMargin     float64 // Маржа к ключевой ставке, %
	DefaultKeyRate float64 // Ставка по умолчанию при недоступности регулятора, %

	LogLevel string // Уровень логирования
}

// LoadConfig загружает конфигурацию из .env файла и переменных окружения
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Файл .env не найден")
	}

	config := &Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "banking"),
		NatsURL:        getEnv("NATS_URL", ""),
		KeyRateURL:     getEnv("KEYRATE_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		LoanMargin:     getEnvFloat("LOAN_MARGIN", 5.0),
		DefaultKeyRate: getEnvFloat("DEFAULT_KEY_RATE", 16.5),
		LogLevel:       getEnv("LOG_LEVEL", "debug"),
	}

	return config, nil
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logrus.Warnf("Некорректное значение %s=%q, используется %.2f", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
