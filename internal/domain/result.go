package domain

import "fmt"

// Result результат мутации: успех или структурированная ошибка с сообщением для пользователя
type Result struct {
	Success  bool
	Message  string
	Birthday *Birthday
	Err      error
}

func Ok(message string, b *Birthday) Result {
	return Result{Success: true, Message: message, Birthday: b}
}

// Fail оборачивает sentinel-ошибку, сообщение показывается пользователю как есть
func Fail(kind error, message string) Result {
	return Result{Message: message, Err: fmt.Errorf("%w: %s", kind, message)}
}
