package utils

import (
	"regexp"
	"strconv"
)

// externalIDPattern выделяет идентификатор проекта из ссылок вида
// https://www.fl.ru/projects/123456/nazvanie.html
var externalIDPattern = regexp.MustCompile(`/projects/(\d+)/`)

// ExtractExternalID возвращает идентификатор проекта из URL или nil,
// если ссылка не содержит сегмента /projects/<id>/.
func ExtractExternalID(rawURL string) *int64 {
	if rawURL == "" {
		return nil
	}
	match := externalIDPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return nil
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// ParseDigits преобразует строку из одних цифр в int64.
func ParseDigits(s string) *int64 {
	if s == "" {
		return nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
