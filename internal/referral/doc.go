// Package referral — HTTP-клиент Referral API.
//
// Клиент выполняет POST без тела на настроенные пути и возвращает
// код ответа и сырое тело. Классификацией ответов занимается
// пакет dispatch; здесь ошибкой считается только сбой транспорта.
package referral
