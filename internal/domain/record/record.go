package record

import (
	"time"
)

// Record - сохраненная партия. SGF хранит сам ход партии, остальное - метаданные для списка.
type Record struct {
	Key         string    `json:"key" bson:"key"`               // секретный ключ, uuid
	PublicKey   string    `json:"public_key" bson:"public_key"` // 5 цифр для ссылки
	Title       string    `json:"title" bson:"title"`
	BoardSize   int       `json:"board_size" bson:"board_size"`
	PlayerBlack string    `json:"player_black,omitempty" bson:"player_black,omitempty"`
	PlayerWhite string    `json:"player_white,omitempty" bson:"player_white,omitempty"`
	Komi        float64   `json:"komi" bson:"komi"`
	Moves       int       `json:"moves" bson:"moves"`
	SGF         string    `json:"sgf,omitempty" bson:"sgf"`
	Source      string    `json:"source,omitempty" bson:"source,omitempty"` // путь файла при импорте
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type CreateRecordRequest struct {
	BoardSize   int     `json:"board_size"`
	Title       string  `json:"title"`
	PlayerBlack string  `json:"player_black"`
	PlayerWhite string  `json:"player_white"`
	Komi        float64 `json:"komi"`
}

type CreateRecordResponse struct {
	Key       string `json:"key"`
	PublicKey string `json:"public_key"`
}

type ListResponse struct {
	PageNum    int      `json:"page_num"`
	TotalPages int      `json:"total_pages"`
	Records    []Record `json:"records"`
}

type ImportResponse struct {
	Imported []CreateRecordResponse `json:"imported"`
	Failed   []string               `json:"failed,omitempty"`
}
