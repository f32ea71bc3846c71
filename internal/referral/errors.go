package referral

import "errors"

// Ошибки клиента.
var (
	// ErrRequestFailed — запрос не дошёл до API или ответ не прочитан.
	ErrRequestFailed = errors.New("referral request failed")

	// ErrInvalidURL — не удалось собрать URL запроса.
	ErrInvalidURL = errors.New("invalid referral url")
)
