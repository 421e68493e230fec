package services

import "os"

func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

func GetEnvBool(key string) bool {
	switch GetEnv(key, "") {
	case "1", "true", "yes":
		return true
	}
	return false
}

func StrPointer(str string) *string {
	if str == "" {
		return nil
	}
	return &str
}

func IntPointer(i int) *int {
	return &i
}

func Float64Pointer(f float64) *float64 {
	return &f
}
