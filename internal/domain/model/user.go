package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// User — запись пользователя в коллекции users.
// Пароль хранится и сравнивается в открытом виде — поведенческий
// контракт системы; для реального развёртывания это небезопасно.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	// Открытый текст; сериализуется в ответах вместе с остальными полями
	Password string `bson:"password" json:"password"`
}

// AuthRequest — тело запроса POST /api/users/authenticate.
type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse — ответ успешной аутентификации: id пользователя и сообщение.
// Никакой токен не выдаётся — единственный механизм доступа к файлам
// это проверка владельца по userId.
type AuthResponse struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}
