package service

import "errors"

// ErrValidation — некорректный ввод администратора: неверное число полей
// или нечисловые идентификатор/цена.
var ErrValidation = errors.New("неверный формат")

// ErrUnauthorized — попытка выполнить админскую операцию без членства в
// списке админов. Наружу пользователю об этом не сообщается.
var ErrUnauthorized = errors.New("недостаточно прав")
